package database

import (
	"context"
	"database/sql"
	"fmt"

	"history-graph/internal/logger"
	"history-graph/internal/source"
)

const migrationSQL = `
CREATE TABLE IF NOT EXISTS passages (
    id SERIAL PRIMARY KEY,
    text TEXT NOT NULL,
    origin TEXT,
    created_at TIMESTAMP DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_passages_origin ON passages(origin);
`

// RunMigrations creates the passages table when the database is empty.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	logger.Info("Running database migrations...")

	var exists bool
	err := db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_schema = 'public' AND table_name = 'passages'
        );
    `).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		logger.Info("Database already initialized")
		return nil
	}

	logger.Info("Database not initialized. Creating schema...")
	if _, err := db.ExecContext(ctx, migrationSQL); err != nil {
		return err
	}
	logger.Info("Database migrations completed successfully")
	return nil
}

// ImportPassages inserts passages into the passages table in one
// transaction and returns how many rows were written.
func ImportPassages(ctx context.Context, db *sql.DB, origin string, passages []source.Passage) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO passages (text, origin) VALUES ($1, $2)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, p := range passages {
		if _, err := stmt.ExecContext(ctx, p.Text, origin); err != nil {
			return 0, fmt.Errorf("failed to insert passage %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(passages), nil
}
