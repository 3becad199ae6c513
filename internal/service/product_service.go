package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/repository"
)

// MinProductPrice is the lowest price a new product may be listed at.
const MinProductPrice = 0.50

var (
	ErrPriceTooLow    = errors.New("price must be at least 0.50")
	ErrIDReassignment = errors.New("the id of a document cannot be changed")
)

// NewProduct carries the fields of a product to be added to the catalog
type NewProduct struct {
	Name        string
	Description string
	Category    string
	Price       float64
}

// ProductPatch is a partial product update. ID is set when the request body
// tried to supply an identity of its own.
type ProductPatch struct {
	ID          *string
	Name        *string
	Description *string
	Category    *string
	Price       *float64
}

// ProductService defines the interface for product business logic
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	Create(ctx context.Context, input NewProduct) (*domain.InsertResult, *domain.Product, error)
	Update(ctx context.Context, id string, patch ProductPatch) error
	Delete(ctx context.Context, id string) error
}

type productService struct {
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{
		productRepo: productRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *productService) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	return s.productRepo.FindByName(ctx, name)
}

// Create adds a product after checking the price floor and that no product
// with the same name exists. The store's unique index remains the final word
// when two requests race past the pre-check.
func (s *productService) Create(ctx context.Context, input NewProduct) (*domain.InsertResult, *domain.Product, error) {
	if input.Price < MinProductPrice {
		return nil, nil, ErrPriceTooLow
	}

	existing, err := s.productRepo.FindByName(ctx, input.Name)
	if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing product: %w", err)
	}
	if existing != nil {
		return nil, nil, repository.ErrProductAlreadyExists
	}

	now := s.now()
	product := &domain.Product{
		Name:          input.Name,
		Description:   input.Description,
		Category:      input.Category,
		Price:         input.Price,
		CreatedOn:     now,
		LastUpdatedOn: now,
	}

	result, err := s.productRepo.Create(ctx, product)
	if err != nil {
		if errors.Is(err, repository.ErrProductAlreadyExists) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to create product: %w", err)
	}

	return result, product, nil
}

// Update merges the supplied fields into the stored product and refreshes
// lastUpdatedOn. Fields left out of the patch keep their current value.
func (s *productService) Update(ctx context.Context, id string, patch ProductPatch) error {
	current, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if patch.ID != nil {
		return ErrIDReassignment
	}
	if patch.Price != nil && *patch.Price < MinProductPrice {
		return ErrPriceTooLow
	}

	if patch.Name != nil && *patch.Name != current.Name {
		clash, err := s.productRepo.FindByName(ctx, *patch.Name)
		if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
			return fmt.Errorf("failed to check existing product: %w", err)
		}
		if clash != nil {
			return repository.ErrProductAlreadyExists
		}
	}

	now := s.now()
	modified, err := s.productRepo.Update(ctx, current.ID, domain.ProductChanges{
		Name:          patch.Name,
		Description:   patch.Description,
		Category:      patch.Category,
		Price:         patch.Price,
		LastUpdatedOn: &now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductAlreadyExists) {
			return err
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if modified == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// Delete removes a product permanently. Unknown ids report ErrProductNotFound.
func (s *productService) Delete(ctx context.Context, id string) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}

	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return repository.ErrProductNotFound
	}

	return nil
}
