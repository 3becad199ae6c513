package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	"shop-api/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// ConnectionError reports that the backing store could not be reached with the
// configured address or credentials.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// HealthChecker reports store status for the health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// Service owns the single postgres connection pool of the process.
type Service struct {
	cfg    config.DatabaseConfig
	logger *zap.Logger

	once sync.Once
	db   *sql.DB
	err  error
}

// New creates a postgres gateway. No connection is made until Connect.
func New(cfg config.DatabaseConfig, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// Connect opens and pings the pool on first use and returns the same handle
// (or the same error) on every later call.
func (s *Service) Connect(ctx context.Context) (*sql.DB, error) {
	s.once.Do(func() {
		s.db, s.err = s.open(ctx)
	})
	return s.db, s.err
}

func (s *Service) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", s.cfg.DSN())
	if err != nil {
		return nil, &ConnectionError{Driver: config.DriverPostgres, Err: err}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	timeout := s.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, &ConnectionError{Driver: config.DriverPostgres, Err: err}
	}

	s.logger.Info("Connected to postgres", zap.String("database", s.cfg.Name))
	return db, nil
}

// Health returns connection pool statistics, or an error status when the
// store does not answer a ping.
func (s *Service) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	db, err := s.Connect(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = "database unavailable"
		return stats
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		s.logger.Error("Database health check failed", zap.Error(err))
		stats["status"] = "down"
		stats["error"] = "database unavailable"
		return stats
	}

	dbStats := db.Stats()
	stats["status"] = "up"
	stats["driver"] = config.DriverPostgres
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	return stats
}

// Close releases the pool if it was opened.
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Info("Disconnecting from postgres")
	return s.db.Close()
}
