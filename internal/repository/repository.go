package repository

import (
	"context"
	"errors"

	"shop-api/internal/domain"
)

var (
	ErrInvalidID = errors.New("invalid identifier")

	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this name already exists")

	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	// Create assigns the identity and stores the product.
	Create(ctx context.Context, product *domain.Product) (*domain.InsertResult, error)
	// Update writes the non-nil fields and reports how many documents changed.
	Update(ctx context.Context, id string, changes domain.ProductChanges) (int64, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	List(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.InsertResult, error)
	Update(ctx context.Context, id string, changes domain.UserChanges) (int64, error)
}
