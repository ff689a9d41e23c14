package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/shopledger/internal/platform/db"
)

// Schema creates the table PostgresSequencer expects.
const Schema = `CREATE TABLE IF NOT EXISTS ledger_sequences (
	name       TEXT PRIMARY KEY,
	value      BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const nextValueSQL = `
	INSERT INTO ledger_sequences (name, value, updated_at)
	VALUES ($1, $2 + 1, NOW())
	ON CONFLICT (name) DO UPDATE
		SET value = ledger_sequences.value + 1, updated_at = NOW()
	RETURNING value`

// ErrSchemaMissing indicates the ledger_sequences table has not been created.
var ErrSchemaMissing = errors.New("sequence: ledger_sequences table missing")

// PostgresSequencer keeps the high-water mark in a row and advances it with a
// single upsert, so concurrent callers serialise on the row lock.
type PostgresSequencer struct {
	pool      *pgxpool.Pool
	name      string
	highWater int64
}

// NewPostgresSequencer returns a sequencer for name. highWater only applies
// when the row does not exist yet.
func NewPostgresSequencer(pool *pgxpool.Pool, name string, highWater int64) *PostgresSequencer {
	return &PostgresSequencer{pool: pool, name: name, highWater: highWater}
}

// EnsureSchema creates the sequence table when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := db.Migrate(ctx, pool, Schema); err != nil {
		return fmt.Errorf("sequence: ensure schema: %w", err)
	}
	return nil
}

// Next advances the row and returns the new value.
func (s *PostgresSequencer) Next(ctx context.Context) (int64, error) {
	var v int64
	err := s.pool.QueryRow(ctx, nextValueSQL, s.name, s.highWater).Scan(&v)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
			return 0, ErrSchemaMissing
		}
		return 0, fmt.Errorf("sequence: next %s: %w", s.name, err)
	}
	return v, nil
}
