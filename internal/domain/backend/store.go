package backend

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// All returns every stored entity grouped by kind, oldest first.
func (s *Store) All(ctx context.Context) (map[string][]json.RawMessage, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT kind, payload
    FROM entities
    ORDER BY kind, created_at, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]json.RawMessage{}
	for rows.Next() {
		var kind string
		var payload []byte
		if err := rows.Scan(&kind, &payload); err != nil {
			return nil, err
		}
		out[kind] = append(out[kind], json.RawMessage(payload))
	}
	return out, rows.Err()
}

func (s *Store) Upsert(ctx context.Context, kind, id string, payload json.RawMessage) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO entities (kind, id, payload)
    VALUES ($1, $2, $3::jsonb)
    ON CONFLICT (kind, id) DO UPDATE
      SET payload = EXCLUDED.payload,
          updated_at = now()
  `, kind, id, string(payload))
	return err
}

func (s *Store) Delete(ctx context.Context, kind, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM entities WHERE kind = $1 AND id = $2", kind, id)
	return err
}
