package domain

import "time"

// Product represents an item in the catalog. Name is unique across all products.
type Product struct {
	ID            string    `json:"_id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Category      string    `json:"category" db:"category"`
	Price         float64   `json:"price" db:"price"`
	CreatedOn     time.Time `json:"createdOn" db:"created_on"`
	LastUpdatedOn time.Time `json:"lastUpdatedOn" db:"last_updated_on"`
}

// ProductChanges is a field set for a partial update. Nil fields are left untouched.
type ProductChanges struct {
	Name          *string
	Description   *string
	Category      *string
	Price         *float64
	LastUpdatedOn *time.Time
}

// InsertResult echoes the outcome of an insert.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}
