package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Santiago1809/auth-ms/internal/config"
)

// NewPool opens a pgx connection pool against the configured database and
// verifies connectivity.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Bootstrap creates the tables and indexes if they don't exist yet.
// Idempotent; safe to run on every startup.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id             TEXT PRIMARY KEY,
			username       TEXT UNIQUE NOT NULL,
			email          TEXT UNIQUE NOT NULL,
			phone_number   TEXT UNIQUE,
			country_code   TEXT NOT NULL DEFAULT '',
			role           TEXT NOT NULL DEFAULT 'user',
			email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			phone_verified BOOLEAN NOT NULL DEFAULT FALSE,
			password_hash  TEXT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS otps (
			id            TEXT PRIMARY KEY,
			user_id       TEXT,
			email         TEXT,
			phone_number  TEXT,
			code          VARCHAR(6) NOT NULL,
			is_magic_link BOOLEAN NOT NULL DEFAULT FALSE,
			expires_at    TIMESTAMPTZ NOT NULL,
			verified      BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL,
			CHECK ((email IS NULL) <> (phone_number IS NULL))
		)`,
		`CREATE INDEX IF NOT EXISTS otps_email_idx ON otps (email, created_at DESC) WHERE email IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS otps_phone_idx ON otps (phone_number, created_at DESC) WHERE phone_number IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS otps_expires_idx ON otps (expires_at)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
