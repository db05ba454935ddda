package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
    CREATE TABLE IF NOT EXISTS visit_counters (
        name       TEXT PRIMARY KEY,
        count      BIGINT NOT NULL DEFAULT 0,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )
`

const incrementSQL = `
    INSERT INTO visit_counters (name, count)
    VALUES ($1, 1)
    ON CONFLICT (name) DO UPDATE
        SET count = visit_counters.count + 1,
            updated_at = now()
    RETURNING count
`

const currentSQL = `SELECT count FROM visit_counters WHERE name = $1`

// Postgres keeps named counters in a single table so several deployments can
// share one database.
type Postgres struct {
	pool *pgxpool.Pool
	name string
}

func NewPostgres(ctx context.Context, databaseURL, name string) (*Postgres, error) {
	if name == "" {
		name = "site"
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect counter database: %w", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create counter table: %w", err)
	}
	return &Postgres{pool: pool, name: name}, nil
}

func (p *Postgres) Current(ctx context.Context) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx, currentSQL, p.name).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter %s: %w", p.name, err)
	}
	return n, nil
}

func (p *Postgres) Increment(ctx context.Context) (int64, error) {
	var n int64
	if err := p.pool.QueryRow(ctx, incrementSQL, p.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", p.name, err)
	}
	return n, nil
}

// Close releases the pool resources.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}
