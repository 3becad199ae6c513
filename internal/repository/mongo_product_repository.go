package repository

import (
	"context"
	"errors"
	"fmt"

	"shop-api/internal/database"
	"shop-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a document store backed ProductRepository
func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{collection: db.Collection(database.ProductCollection)}
}

func (r *mongoProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		products = append(products, docs[i].toDomain())
	}
	return products, nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *mongoProductRepository) findOne(ctx context.Context, filter bson.M) (*domain.Product, error) {
	var doc productDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *mongoProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.InsertResult, error) {
	doc := productDocument{
		ID:            primitive.NewObjectID(),
		Name:          product.Name,
		Description:   product.Description,
		Category:      product.Category,
		Price:         product.Price,
		CreatedOn:     product.CreatedOn,
		LastUpdatedOn: product.LastUpdatedOn,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrProductAlreadyExists
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	product.ID = doc.ID.Hex()
	return &domain.InsertResult{Acknowledged: result.InsertedID != nil, InsertedID: product.ID}, nil
}

func (r *mongoProductRepository) Update(ctx context.Context, id string, changes domain.ProductChanges) (int64, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return 0, err
	}

	set := productChangesToSet(changes)
	if len(set) == 0 {
		return 0, nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, ErrProductAlreadyExists
		}
		return 0, fmt.Errorf("failed to update product: %w", err)
	}
	// identical rewrites leave ModifiedCount at 0
	return result.MatchedCount, nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return false, err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return result.DeletedCount == 1, nil
}
