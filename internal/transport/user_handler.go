package transport

import (
	"fmt"
	"net/http"
	"strings"

	"shop-api/internal/auth"
	"shop-api/internal/domain"
	"shop-api/internal/middleware"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,min=1,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=50"`
	Role     string `json:"role" validate:"required,min=1,max=50"`
}

func (r *RegisterRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
	r.Role = strings.TrimSpace(r.Role)
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=50"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

// UpdateProfileRequest represents a partial update of the caller's account
type UpdateProfileRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,max=50"`
}

func (r *UpdateProfileRequest) Normalize() {
	trim(r.FullName)
	trim(r.Email)
	trim(r.Password)
}

// RegisterResponse echoes the insert outcome and the stored user
type RegisterResponse struct {
	Result    *domain.InsertResult `json:"result"`
	AddedUser *domain.User         `json:"addedUser"`
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userService  service.UserService
	logger       *zap.Logger
	secureCookie bool
}

// NewUserHandler creates a new UserHandler. secureCookie marks the auth
// cookie HTTPS-only.
func NewUserHandler(userService service.UserService, logger *zap.Logger, secureCookie bool) *UserHandler {
	return &UserHandler{
		userService:  userService,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/user", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/list", h.List)
			r.Get("/me", h.GetMe)
			r.Put("/me", h.UpdateMe)
			r.Get("/{id}", h.GetByID)
		})
	})
}

// Register handles user registration
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	result, user, session, err := h.userService.Register(r.Context(), service.NewUser{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "register user")
		return
	}

	h.setSession(w, session)
	h.logger.Info("User registered successfully", zap.String("user_id", user.ID))
	middleware.RespondWithJSON(w, http.StatusOK, RegisterResponse{
		Result:    result,
		AddedUser: user,
	})
}

// Login handles user authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	user, session, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.logger, err, "login")
		return
	}

	h.setSession(w, session)
	h.logger.Info("User logged in successfully", zap.String("user_id", user.ID))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Welcome back %s.", user.FullName),
	})
}

// Logout revokes the presented token and clears the cookie
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		respondServiceError(w, h.logger, err, "logout")
		return
	}

	auth.ClearAuthCookie(w, h.secureCookie)
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

// List handles listing all users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list users")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, users)
}

// GetByID handles fetching a user by id
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "get user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// GetMe handles fetching the caller's own user document
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.logger.Error("Identity not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), identity.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err, "get user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateMe handles a partial update of the caller's own account
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.logger.Error("Identity not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	var req UpdateProfileRequest
	if err := middleware.DecodeOptional(r, &req); err != nil {
		respondDecodeError(w, h.logger, err)
		return
	}

	id, err := h.userService.UpdateProfile(r.Context(), identity, service.UserPatch{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "update user")
		return
	}

	h.logger.Info("User updated", zap.String("user_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("User %s updated!", id),
	})
}

func (h *UserHandler) setSession(w http.ResponseWriter, session service.Session) {
	auth.SetAuthCookie(w, session.Token, session.TTL, h.secureCookie)
}
