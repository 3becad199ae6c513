package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shop-api/internal/auth"
	"shop-api/internal/domain"
	"shop-api/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// TokenIssuer issues and verifies auth tokens
type TokenIssuer interface {
	Issue(identity domain.Identity) (string, time.Time, error)
	Verify(tokenString string) (domain.Identity, error)
	TTL() time.Duration
}

// NewUser carries the registration fields
type NewUser struct {
	FullName string
	Email    string
	Password string
	Role     string
}

// UserPatch is a partial update of the caller's own account
type UserPatch struct {
	FullName *string
	Email    *string
	Password *string
}

// Session is a freshly issued auth token. TTL is the validity window the
// token was issued with.
type Session struct {
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// UserService defines the interface for user business logic
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Register(ctx context.Context, input NewUser) (*domain.InsertResult, *domain.User, Session, error)
	Login(ctx context.Context, email, password string) (*domain.User, Session, error)
	UpdateProfile(ctx context.Context, caller domain.Identity, patch UserPatch) (string, error)
	Logout(ctx context.Context, token string) error
}

type userService struct {
	userRepo    repository.UserRepository
	tokens      TokenIssuer
	revocations auth.RevocationStore
	now         func() time.Time
}

// NewUserService creates a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	tokens TokenIssuer,
	revocations auth.RevocationStore,
) UserService {
	if revocations == nil {
		revocations = auth.NoopRevocationStore{}
	}
	return &userService{
		userRepo:    userRepo,
		tokens:      tokens,
		revocations: revocations,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// Register creates a new user account with a hashed password and signs the
// new user in
func (s *userService) Register(ctx context.Context, input NewUser) (*domain.InsertResult, *domain.User, Session, error) {
	existingUser, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil, Session{}, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, nil, Session{}, repository.ErrUserAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, nil, Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         input.Role,
		CreationDate: s.now(),
	}

	result, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, nil, Session{}, err
		}
		return nil, nil, Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, nil, Session{}, err
	}

	return result, user, session, nil
}

// Login authenticates a user. Unknown emails and wrong passwords both return
// ErrInvalidCredentials after a bcrypt comparison.
func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.CompareDummy(password)
			return nil, Session{}, ErrInvalidCredentials
		}
		return nil, Session{}, fmt.Errorf("failed to find user: %w", err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, Session{}, ErrInvalidCredentials
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, Session{}, err
	}

	return user, session, nil
}

// UpdateProfile applies the patch to the caller's own account and returns
// its id
func (s *userService) UpdateProfile(ctx context.Context, caller domain.Identity, patch UserPatch) (string, error) {
	current, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return "", err
	}

	if patch.Email != nil && !sameEmail(*patch.Email, current.Email) {
		clash, err := s.userRepo.FindByEmail(ctx, *patch.Email)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return "", fmt.Errorf("failed to check existing user: %w", err)
		}
		if clash != nil {
			return "", repository.ErrUserAlreadyExists
		}
	}

	changes := domain.UserChanges{
		FullName: patch.FullName,
		Email:    patch.Email,
	}
	if patch.Password != nil {
		hashedPassword, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		changes.PasswordHash = &hashedPassword
	}

	now := s.now()
	updatedBy := current.FullName
	changes.LastUpdated = &now
	changes.LastUpdatedBy = &updatedBy

	modified, err := s.userRepo.Update(ctx, current.ID, changes)
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return "", err
		}
		return "", fmt.Errorf("failed to update user: %w", err)
	}
	if modified == 0 {
		return "", repository.ErrUserNotFound
	}

	return current.ID, nil
}

// Logout revokes the presented token. Tokens that no longer verify need no
// revocation.
func (s *userService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	identity, err := s.tokens.Verify(token)
	if err != nil {
		return nil
	}

	if err := s.revocations.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *userService) issue(user *domain.User) (Session, error) {
	token, expiresAt, err := s.tokens.Issue(domain.Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return Session{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return Session{Token: token, ExpiresAt: expiresAt, TTL: s.tokens.TTL()}, nil
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
