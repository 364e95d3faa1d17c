package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/serroba/wastefinder/internal/datastore"
)

// Execer is the subset of pgxpool.Pool used by PostgresStore.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore appends change events to the store_changes table.
type PostgresStore struct {
	conn Execer
	now  func() time.Time
}

// NewPostgresStore creates a Postgres audit store.
func NewPostgresStore(conn Execer) *PostgresStore {
	return &PostgresStore{conn: conn, now: time.Now}
}

// EnsureSchema creates the audit table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS store_changes (
			id          BIGSERIAL PRIMARY KEY,
			key         TEXT NOT NULL,
			origin      TEXT NOT NULL,
			changed_at  TIMESTAMPTZ NOT NULL,
			received_at TIMESTAMPTZ NOT NULL
		)
	`

	_, err := p.conn.Exec(ctx, query)

	return err
}

func (p *PostgresStore) Save(ctx context.Context, event *datastore.ChangeEvent) error {
	query := `
		INSERT INTO store_changes (key, origin, changed_at, received_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.conn.Exec(ctx, query, event.Key, event.Origin, event.ChangedAt, p.now().UTC())

	return err
}
