// Package backend is a reference implementation of the remote action
// protocol, persisting each entity as one JSON row.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"kpiteam/internal/domain/auth"
	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/platform/bridge"
)

type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

// Dispatch runs one action and returns the value to place in the reply's
// data field.
func (s *Service) Dispatch(ctx context.Context, action string, payload json.RawMessage) (any, error) {
	if action == bridge.ActionGetAllData {
		return s.getAllData(ctx)
	}
	if kind, ok := saveActions[action]; ok {
		return s.save(ctx, kind, payload)
	}
	if kind, ok := deleteActions[action]; ok {
		id, err := deleteID(payload)
		if err != nil {
			return nil, err
		}
		if err := s.store.Delete(ctx, kind, id); err != nil {
			return nil, fmt.Errorf("delete %s %s: %w", kind, id, err)
		}
		return map[string]string{"id": id}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
}

func (s *Service) getAllData(ctx context.Context) (map[string][]json.RawMessage, error) {
	stored, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entities: %w", err)
	}
	out := make(map[string][]json.RawMessage, len(Kinds))
	for _, kind := range Kinds {
		items := stored[kind]
		if items == nil {
			items = []json.RawMessage{}
		}
		out[kind] = items
	}
	return out, nil
}

func (s *Service) save(ctx context.Context, kind string, payload json.RawMessage) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return nil, ErrInvalidPayload
	}
	id := rawID(fields["id"])
	if id == "" {
		id = uuid.NewString()
	}
	fields["id"], _ = json.Marshal(id)

	if kind == KindEmployees {
		if err := hashEmployeePassword(fields); err != nil {
			return nil, err
		}
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if err := s.store.Upsert(ctx, kind, id, out); err != nil {
		return nil, fmt.Errorf("save %s %s: %w", kind, id, err)
	}
	return out, nil
}

// hashEmployeePassword replaces a plain-text password with its bcrypt hash.
func hashEmployeePassword(fields map[string]json.RawMessage) error {
	raw, ok := fields["password"]
	if !ok {
		return nil
	}
	var pw kpi.FlexString
	if err := json.Unmarshal(raw, &pw); err != nil {
		return fmt.Errorf("employee password: %w", err)
	}
	plain := pw.String()
	if plain == "" || isHashed(plain) {
		return nil
	}
	hash, err := auth.HashPassword(plain)
	if err != nil {
		return err
	}
	fields["password"], _ = json.Marshal(hash)
	return nil
}

func isHashed(v string) bool {
	return strings.HasPrefix(v, "$2a$") || strings.HasPrefix(v, "$2b$") || strings.HasPrefix(v, "$2y$")
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id kpi.FlexString
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id.String()
}

// deleteID accepts a bare id (string or number) or an object with an id field.
func deleteID(payload json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return "", ErrInvalidPayload
		}
		trimmed = obj["id"]
	}
	id := rawID(trimmed)
	if id == "" {
		return "", ErrMissingID
	}
	return id, nil
}
