package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shop-api/internal/auth"
	"shop-api/internal/config"
	"shop-api/internal/database"
	"shop-api/internal/logger"
	"shop-api/internal/repository"
	"shop-api/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

// connectStore connects the configured backend and prepares its schema.
// Any failure here is fatal: the process must not start serving.
func connectStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (server.Deps, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		store := database.NewMongo(cfg.Database, logger.Named(log, "mongo"))
		db, err := store.Connect(ctx)
		if err != nil {
			return server.Deps{}, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			store.Close()
			return server.Deps{}, err
		}
		log.Info("Document store indexes ensured")

		return server.Deps{
			Products: repository.NewMongoProductRepository(db),
			Users:    repository.NewMongoUserRepository(db),
			Store:    store,
			Closers:  []io.Closer{store},
		}, nil

	default:
		store := database.New(cfg.Database, logger.Named(log, "postgres"))
		db, err := store.Connect(ctx)
		if err != nil {
			return server.Deps{}, err
		}
		if err := database.RunMigrations(db, cfg.Database.MigrationsDir, log); err != nil {
			store.Close()
			return server.Deps{}, err
		}
		log.Info("Database migrations completed successfully")

		return server.Deps{
			Products: repository.NewProductRepository(db),
			Users:    repository.NewUserRepository(db),
			Store:    store,
			Closers:  []io.Closer{store},
		}, nil
	}
}

// connectRevocations returns the Redis backed revocation store, or a no-op
// store when REDIS_HOST is unset.
func connectRevocations(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (auth.RevocationStore, io.Closer, error) {
	if !cfg.Enabled() {
		log.Warn("REDIS_HOST not set, logged out tokens stay valid until they expire")
		return auth.NoopRevocationStore{}, nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	log.Info("Connected to redis", zap.String("addr", cfg.Addr()))
	return auth.NewRedisRevocationStore(client), client, nil
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	log.Info("Starting shop API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	deps, err := connectStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to the store", zap.Error(err))
	}
	log.Info("Database health check", zap.Any("health", deps.Store.Health(ctx)))

	revocations, redisCloser, err := connectRevocations(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to set up token revocation", zap.Error(err))
	}
	deps.Revocations = revocations
	if redisCloser != nil {
		deps.Closers = append(deps.Closers, redisCloser)
	}

	// Create server
	srv := server.NewServer(cfg, log, deps)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
