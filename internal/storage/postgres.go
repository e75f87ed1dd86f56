package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaLocalState = `
CREATE TABLE IF NOT EXISTS local_state (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`

type Postgres struct {
	DB        *pgxpool.Pool
	Namespace string
}

// NewPostgres creates the local_state table when missing.
func NewPostgres(ctx context.Context, db *pgxpool.Pool, namespace string) (*Postgres, error) {
	if _, err := db.Exec(ctx, schemaLocalState); err != nil {
		return nil, err
	}
	return &Postgres{DB: db, Namespace: namespace}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var b []byte
	err := p.DB.QueryRow(ctx,
		`SELECT value::text FROM local_state WHERE namespace=$1 AND key=$2`,
		p.Namespace, key).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.DB.Exec(ctx, `
		INSERT INTO local_state(namespace, key, value, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, p.Namespace, key, string(value))
	return err
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.DB.Exec(ctx, `DELETE FROM local_state WHERE namespace=$1 AND key=$2`, p.Namespace, key)
	return err
}
