package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shop-api/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names used by the document backend.
const (
	ProductCollection = "Product"
	UserCollection    = "User"
)

// MongoService owns the single document store client of the process.
type MongoService struct {
	cfg    config.DatabaseConfig
	logger *zap.Logger

	once   sync.Once
	client *mongo.Client
	db     *mongo.Database
	err    error
}

// NewMongo creates a document store gateway. No connection is made until Connect.
func NewMongo(cfg config.DatabaseConfig, logger *zap.Logger) *MongoService {
	return &MongoService{cfg: cfg, logger: logger}
}

// Connect dials and pings the store on first use and returns the same database
// handle (or the same error) on every later call.
func (s *MongoService) Connect(ctx context.Context) (*mongo.Database, error) {
	s.once.Do(func() {
		s.db, s.err = s.open(ctx)
	})
	return s.db, s.err
}

func (s *MongoService) open(ctx context.Context) (*mongo.Database, error) {
	timeout := s.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(s.cfg.URL).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, &ConnectionError{Driver: config.DriverMongo, Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &ConnectionError{Driver: config.DriverMongo, Err: err}
	}

	s.client = client
	s.logger.Info("Connected to mongo", zap.String("database", s.cfg.Name))
	return client.Database(s.cfg.Name), nil
}

// EnsureIndexes creates the unique indexes that back name and email uniqueness.
func (s *MongoService) EnsureIndexes(ctx context.Context) error {
	db, err := s.Connect(ctx)
	if err != nil {
		return err
	}
	return EnsureIndexes(ctx, db)
}

// EnsureIndexes creates the unique indexes on db. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string]string{
		ProductCollection: "name",
		UserCollection:    "email",
	}
	for collection, field := range indexes {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(field + "_unique"),
		}
		if _, err := db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create unique index on %s.%s: %w", collection, field, err)
		}
	}
	return nil
}

// Health pings the primary.
func (s *MongoService) Health(ctx context.Context) map[string]string {
	stats := map[string]string{"driver": config.DriverMongo}

	if _, err := s.Connect(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = "database unavailable"
		return stats
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := s.client.Ping(pingCtx, readpref.Primary()); err != nil {
		s.logger.Error("Database health check failed", zap.Error(err))
		stats["status"] = "down"
		stats["error"] = "database unavailable"
		return stats
	}

	stats["status"] = "up"
	return stats
}

// Close disconnects the client if it was connected.
func (s *MongoService) Close() error {
	if s.client == nil {
		return nil
	}
	s.logger.Info("Disconnecting from mongo")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
