package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ruteri/share-engine/interfaces"
)

// Schema creates the table the Postgres backend uses.
const Schema = `
CREATE TABLE IF NOT EXISTS share_records (
	id          UUID PRIMARY KEY,
	field_name  TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	party_count INTEGER NOT NULL,
	threshold   INTEGER NOT NULL,
	record      JSONB NOT NULL
)`

// pgPool is the subset of *pgxpool.Pool the backend uses.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresBackend implements a share store in a PostgreSQL table.
// Audit columns are kept next to the serialized record so metadata queries
// don't need to parse it.
type PostgresBackend struct {
	pool        pgPool
	log         *slog.Logger
	locationURI string
}

// NewPostgresBackend connects a pool to dsn and ensures the schema exists.
func NewPostgresBackend(ctx context.Context, dsn, locationURI string, log *slog.Logger) (*PostgresBackend, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	b := NewPostgresBackendWithPool(pool, locationURI, log)
	if err := b.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

// NewPostgresBackendWithPool wraps an existing pool.
func NewPostgresBackendWithPool(pool *pgxpool.Pool, locationURI string, log *slog.Logger) *PostgresBackend {
	return &PostgresBackend{pool: pool, log: log, locationURI: locationURI}
}

// Migrate creates the share_records table if needed.
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	if _, err := b.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply share_records schema: %w", err)
	}
	return nil
}

// Fetch loads the record row by id.
func (b *PostgresBackend) Fetch(ctx context.Context, id string) (*interfaces.ShareRecord, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var data []byte
	err := b.pool.QueryRow(ctx, `
		SELECT record
		FROM share_records
		WHERE id = $1
	`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, interfaces.ErrShareNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	return unmarshalRecord(data)
}

// Store upserts the record row.
func (b *PostgresBackend) Store(ctx context.Context, record *interfaces.ShareRecord) error {
	data, err := marshalRecord(record)
	if err != nil {
		return err
	}

	_, err = b.pool.Exec(ctx, `
		INSERT INTO share_records (id, field_name, created_at, party_count, threshold, record)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record
	`, record.ID(), record.FieldName(), record.CreatedAt(), record.PartyCount(), record.Threshold(), data)
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Stored share record in postgres", slog.String("id", record.ID()))
	return nil
}

// Delete removes the record row.
func (b *PostgresBackend) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	tag, err := b.pool.Exec(ctx, `DELETE FROM share_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return interfaces.ErrShareNotFound
	}
	return nil
}

// Available pings the database.
func (b *PostgresBackend) Available(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := b.pool.Ping(pingCtx); err != nil {
		b.log.Debug("Postgres backend unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *PostgresBackend) Name() string {
	return "postgres"
}

// LocationURI returns the URI that identifies this storage backend.
func (b *PostgresBackend) LocationURI() string {
	return b.locationURI
}
