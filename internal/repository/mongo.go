package repository

import (
	"strings"
	"time"

	"shop-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

type productDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Description   string             `bson:"description"`
	Category      string             `bson:"category"`
	Price         float64            `bson:"price"`
	CreatedOn     time.Time          `bson:"createdOn"`
	LastUpdatedOn time.Time          `bson:"lastUpdatedOn"`
}

func (d *productDocument) toDomain() *domain.Product {
	return &domain.Product{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Description:   d.Description,
		Category:      d.Category,
		Price:         d.Price,
		CreatedOn:     d.CreatedOn,
		LastUpdatedOn: d.LastUpdatedOn,
	}
}

func productChangesToSet(changes domain.ProductChanges) bson.M {
	set := bson.M{}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Category != nil {
		set["category"] = *changes.Category
	}
	if changes.Price != nil {
		set["price"] = *changes.Price
	}
	if changes.LastUpdatedOn != nil {
		set["lastUpdatedOn"] = *changes.LastUpdatedOn
	}
	return set
}

type userDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	FullName      string             `bson:"fullName"`
	Email         string             `bson:"email"`
	Password      string             `bson:"password"`
	Role          string             `bson:"role"`
	CreationDate  time.Time          `bson:"creationDate"`
	LastUpdated   *time.Time         `bson:"lastUpdated,omitempty"`
	LastUpdatedBy string             `bson:"lastUpdatedBy,omitempty"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:            d.ID.Hex(),
		FullName:      d.FullName,
		Email:         d.Email,
		PasswordHash:  d.Password,
		Role:          d.Role,
		CreationDate:  d.CreationDate,
		LastUpdated:   d.LastUpdated,
		LastUpdatedBy: d.LastUpdatedBy,
	}
}

func userChangesToSet(changes domain.UserChanges) bson.M {
	set := bson.M{}
	if changes.FullName != nil {
		set["fullName"] = *changes.FullName
	}
	if changes.Email != nil {
		set["email"] = normalizeEmail(*changes.Email)
	}
	if changes.PasswordHash != nil {
		set["password"] = *changes.PasswordHash
	}
	if changes.LastUpdated != nil {
		set["lastUpdated"] = *changes.LastUpdated
	}
	if changes.LastUpdatedBy != nil {
		set["lastUpdatedBy"] = *changes.LastUpdatedBy
	}
	return set
}
