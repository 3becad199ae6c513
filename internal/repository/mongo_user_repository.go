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

type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a document store backed UserRepository
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{collection: db.Collection(database.UserCollection)}
}

func (r *mongoUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.InsertResult, error) {
	user.Email = normalizeEmail(user.Email)
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		FullName:     user.FullName,
		Email:        user.Email,
		Password:     user.PasswordHash,
		Role:         user.Role,
		CreationDate: user.CreationDate,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = doc.ID.Hex()
	return &domain.InsertResult{Acknowledged: result.InsertedID != nil, InsertedID: user.ID}, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, id string, changes domain.UserChanges) (int64, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return 0, err
	}

	set := userChangesToSet(changes)
	if len(set) == 0 {
		return 0, nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, ErrUserAlreadyExists
		}
		return 0, fmt.Errorf("failed to update user: %w", err)
	}
	// identical rewrites leave ModifiedCount at 0
	return result.MatchedCount, nil
}
