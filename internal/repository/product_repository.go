package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-api/internal/domain"

	"github.com/google/uuid"
)

const productColumns = `id, name, description, category, price, created_on, last_updated_on`

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a postgres backed ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// List retrieves every product ordered by name
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.findOne(ctx, query, productID)
}

// FindByName retrieves a product by its unique name
func (r *productRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1`
	return r.findOne(ctx, query, name)
}

func (r *productRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

// Create inserts a new product. A duplicate name is reported as ErrProductAlreadyExists.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) (*domain.InsertResult, error) {
	id := uuid.New()

	query := `INSERT INTO products (` + productColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		id,
		product.Name,
		product.Description,
		product.Category,
		product.Price,
		product.CreatedOn,
		product.LastUpdatedOn,
	)
	if err != nil {
		if isUniqueViolation(err, "products_name_key") {
			return nil, ErrProductAlreadyExists
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	product.ID = id.String()
	return &domain.InsertResult{Acknowledged: true, InsertedID: product.ID}, nil
}

// Update writes only the supplied fields
func (r *productRepository) Update(ctx context.Context, id string, changes domain.ProductChanges) (int64, error) {
	productID, err := parseUUID(id)
	if err != nil {
		return 0, err
	}

	set := &setClause{}
	if changes.Name != nil {
		set.add("name", *changes.Name)
	}
	if changes.Description != nil {
		set.add("description", *changes.Description)
	}
	if changes.Category != nil {
		set.add("category", *changes.Category)
	}
	if changes.Price != nil {
		set.add("price", *changes.Price)
	}
	if changes.LastUpdatedOn != nil {
		set.add("last_updated_on", *changes.LastUpdatedOn)
	}
	if set.empty() {
		return 0, nil
	}

	query, args := set.statement("products", productID)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "products_name_key") {
			return 0, ErrProductAlreadyExists
		}
		return 0, fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// Delete removes a product and reports whether a row was deleted
func (r *productRepository) Delete(ctx context.Context, id string) (bool, error) {
	productID, err := parseUUID(id)
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var id uuid.UUID
	product := &domain.Product{}
	err := row.Scan(
		&id,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.Price,
		&product.CreatedOn,
		&product.LastUpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	product.ID = id.String()
	return product, nil
}
