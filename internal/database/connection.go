package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"history-graph/internal/logger"

	_ "github.com/lib/pq"
)

const (
	connectRetries = 20
	retryDelay     = 3 * time.Second
)

// NewConnection opens a Postgres pool, waiting for the server to accept
// connections first.
func NewConnection(ctx context.Context, dbURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := waitForDatabase(ctx, db, connectRetries, retryDelay); err != nil {
		db.Close()
		return nil, fmt.Errorf("database connection timeout: %w", err)
	}

	logger.Info("Database connection established")
	return db, nil
}

func waitForDatabase(ctx context.Context, db *sql.DB, maxRetries int, delay time.Duration) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		logger.Warn("Database ping failed", "attempt", i+1, "max", maxRetries, "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}
