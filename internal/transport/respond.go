package transport

import (
	"errors"
	"net/http"
	"strings"

	"shop-api/internal/auth"
	"shop-api/internal/middleware"
	"shop-api/internal/repository"
	"shop-api/internal/service"

	"go.uber.org/zap"
)

// respondDecodeError answers a request whose body could not be decoded or
// failed validation
func respondDecodeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Debug("Request validation failed", zap.Error(err))

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	if errors.Is(err, middleware.ErrEmptyBody) {
		middleware.RespondWithError(w, http.StatusBadRequest, "request body is required")
		return
	}

	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

// respondServiceError maps service and repository errors onto HTTP statuses.
// Anything unrecognised is a store failure and its cause stays in the logs.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		middleware.RespondWithError(w, http.StatusBadRequest, "id is not a valid identifier")
	case errors.Is(err, service.ErrPriceTooLow):
		middleware.RespondWithError(w, http.StatusBadRequest, "price must be at least 0.50")
	case errors.Is(err, service.ErrIDReassignment):
		middleware.RespondWithError(w, http.StatusBadRequest, "the id of a document cannot be changed")
	case errors.Is(err, auth.ErrPasswordTooLong):
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, "validation failed", map[string]interface{}{
			"validation_errors": []middleware.ValidationError{{Field: "password", Message: auth.ErrPasswordTooLong.Error()}},
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid email or password")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrUserNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, repository.ErrProductAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, "a product with this name already exists")
	case errors.Is(err, repository.ErrUserAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, "a user with this email already exists")
	default:
		logger.Error("Failed to "+action, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to "+action)
		return
	}

	logger.Debug("Request rejected", zap.String("action", action), zap.Error(err))
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
