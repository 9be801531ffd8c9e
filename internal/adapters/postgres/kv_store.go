// Package postgres provides a Postgres-backed key-value store for hosts that
// keep worry documents on a shared server.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/example/worrybox/internal/ports/secondary"
)

const driverName = "pgx"

const ddl = `CREATE TABLE IF NOT EXISTS worrybox_kv (
	key TEXT PRIMARY KEY,
	value BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// KeyValueStore implements secondary.KeyValueStore with Postgres.
type KeyValueStore struct {
	db *sql.DB
}

// Open connects to dsn and prepares the store table.
func Open(ctx context.Context, dsn string) (*KeyValueStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewKeyValueStore(ctx, db)
}

// NewKeyValueStore wraps an open database, creating the table if needed.
func NewKeyValueStore(ctx context.Context, db *sql.DB) (*KeyValueStore, error) {
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure kv table: %w", err)
	}
	return &KeyValueStore{db: db}, nil
}

// Get retrieves the value stored under key.
func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM worrybox_kv WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key.
func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO worrybox_kv (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *KeyValueStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM worrybox_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *KeyValueStore) Close() error {
	return s.db.Close()
}

// Ensure KeyValueStore implements the interface
var _ secondary.KeyValueStore = (*KeyValueStore)(nil)
