package backend

import (
	"context"
	"encoding/json"
)

type StoreAPI interface {
	All(ctx context.Context) (map[string][]json.RawMessage, error)
	Upsert(ctx context.Context, kind, id string, payload json.RawMessage) error
	Delete(ctx context.Context, kind, id string) error
}
