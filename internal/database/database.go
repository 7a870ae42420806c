// Package database stores match audit records in Postgres via pgx.
// Like the Redis historian, everything here is optional: a nil pool makes
// every helper a no-op so the engine and session run fully offline.
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the shared connection pool. Nil when no database is configured.
var DB *pgxpool.Pool

// Connect opens the pool and verifies connectivity.
func Connect(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pgx ping: %w", err)
	}
	DB = pool
	return nil
}

// Close releases the pool.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

// Migrate creates the match table when it does not exist yet.
func Migrate(ctx context.Context) error {
	if DB == nil {
		return nil
	}
	_, err := DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS matches (
			id            UUID PRIMARY KEY,
			initial_state JSONB,
			final_state   JSONB,
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("migrate matches: %w", err)
	}
	return nil
}

// UpsertInitialMatchState saves the deal snapshot for replay and audit.
func UpsertInitialMatchState(ctx context.Context, matchID uuid.UUID, snapshot interface{}) error {
	if DB == nil {
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal initial state: %w", err)
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO matches (id, initial_state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET initial_state = EXCLUDED.initial_state, updated_at = now()`,
		matchID, data)
	if err != nil {
		return fmt.Errorf("upsert initial state: %w", err)
	}
	return nil
}

// StoreFinalMatchState saves the terminal scores and winner.
func StoreFinalMatchState(ctx context.Context, matchID uuid.UUID, snapshot interface{}) error {
	if DB == nil {
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal final state: %w", err)
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO matches (id, final_state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET final_state = EXCLUDED.final_state, updated_at = now()`,
		matchID, data)
	if err != nil {
		return fmt.Errorf("store final state: %w", err)
	}
	return nil
}
