package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/serroba/wastefinder/internal/datastore"
)

// PgxConn is the subset of pgxpool.Pool used by the Postgres stores.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresKV is a PostgreSQL implementation of datastore.Backend.
// Values are stored as text so malformed documents can still be read and discarded.
type PostgresKV struct {
	conn PgxConn
}

// NewPostgresKV creates a new PostgreSQL-backed key-value backend.
func NewPostgresKV(conn PgxConn) *PostgresKV {
	return &PostgresKV{conn: conn}
}

// EnsureSchema creates the backing table if it does not exist.
func (p *PostgresKV) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS kv_store (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	_, err := p.conn.Exec(ctx, query)

	return err
}

func (p *PostgresKV) Load(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM kv_store
		WHERE key = $1
	`

	var value string

	err := p.conn.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, datastore.ErrNoValue
		}

		return nil, err
	}

	return []byte(value), nil
}

func (p *PostgresKV) Save(ctx context.Context, key string, raw []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := p.conn.Exec(ctx, query, key, string(raw))

	return err
}

func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	query := `
		DELETE FROM kv_store
		WHERE key = $1
	`

	_, err := p.conn.Exec(ctx, query, key)

	return err
}

// Compile-time check.
var _ datastore.Backend = (*PostgresKV)(nil)
