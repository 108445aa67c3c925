package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedRow is one entity row written by Seed.
type SeedRow struct {
	Kind    string
	ID      string
	Payload []byte
}

// Seed inserts rows that do not exist yet and reports how many were added.
// Existing rows are never overwritten, so seeding is safe on every start.
func Seed(ctx context.Context, pool *pgxpool.Pool, rows []SeedRow) (int, error) {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted := 0
	for _, row := range rows {
		tag, err := tx.Exec(ctx, `
    INSERT INTO entities (kind, id, payload)
    VALUES ($1, $2, $3::jsonb)
    ON CONFLICT (kind, id) DO NOTHING
  `, row.Kind, row.ID, string(row.Payload))
		if err != nil {
			return 0, err
		}
		inserted += int(tag.RowsAffected())
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}
