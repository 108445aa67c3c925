package state

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"kpiteam/internal/domain/kpi"
)

const saveFailedMessage = "Save failed. Please refresh."

func deleteFailedMessage(action string) string {
	return fmt.Sprintf("Could not delete the data (backend error).\n\n"+
		"Possible causes:\n"+
		"1. The backend has no %s handler.\n"+
		"2. The backend failed while writing the data.\n\n"+
		"The previous data will be reloaded.", action)
}

// patch is one optimistic change awaiting its remote reply.
type patch struct {
	id         string
	key        string
	generation uint64
	undo       func()
}

// binding ties a collection to its remote save and delete actions.
type binding[T kpi.Entity[T]] struct {
	name       string
	collection func(*Store) *collection[T]
	saveAction string
	delAction  string
}

func patchKey(collection, id string) string {
	return collection + "/" + id
}

// beginPatchLocked records p as the newest change to its entity.
func (s *Store) beginPatchLocked(key string, undo func()) *patch {
	p := &patch{id: uuid.NewString(), key: key, generation: s.generation, undo: undo}
	s.pending[p.id] = p
	s.latest[key] = p.id
	return p
}

func (s *Store) endPatchLocked(p *patch) {
	delete(s.pending, p.id)
	if s.latest[p.key] == p.id {
		delete(s.latest, p.key)
	}
}

func (s *Store) commit(p *patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endPatchLocked(p)
}

// abort undoes p in place when nothing newer touched the same entity and no
// reload replaced the collections since; otherwise it reloads everything.
func (s *Store) abort(ctx context.Context, p *patch, action string, cause error, message string) {
	s.mu.Lock()
	clean := s.latest[p.key] == p.id && s.generation == p.generation
	if clean {
		p.undo()
	}
	s.endPatchLocked(p)
	s.mu.Unlock()

	if clean {
		s.metrics.Rollback()
		slog.Warn("remote action failed; optimistic change rolled back", "action", action, "correlationId", p.id, "err", cause)
	} else {
		s.metrics.Resync(action)
		slog.Warn("remote action failed; reloading all data", "action", action, "correlationId", p.id, "err", cause)
		s.LoadAll(ctx)
	}

	s.mu.Lock()
	s.lastError = cause.Error()
	s.mu.Unlock()
	s.notifier.Alert(ctx, message)
}

// saveEntity applies item optimistically and sends it to the backend. An empty id
// is replaced with a new uuid. The stored item is returned.
func saveEntity[T kpi.Entity[T]](ctx context.Context, s *Store, b binding[T], item T) T {
	if item.EntityID() == "" {
		item = item.WithEntityID(uuid.NewString())
	}
	id := item.EntityID()

	s.mu.Lock()
	c := b.collection(s)
	prev, existed := c.upsert(item)
	connected := s.invoker.Connected()
	var p *patch
	if connected {
		p = s.beginPatchLocked(patchKey(b.name, id), func() {
			if !existed {
				c.remove(id)
				return
			}
			if i := c.indexOf(id); i >= 0 {
				c.items[i] = prev
				return
			}
			c.items = append(c.items, prev)
		})
	}
	s.mu.Unlock()

	if !connected {
		return item
	}
	if _, err := s.invoker.Invoke(ctx, b.saveAction, item); err != nil {
		s.abort(ctx, p, b.saveAction, err, saveFailedMessage)
		return item
	}
	s.commit(p)
	return item
}

// deleteEntity deletes id optimistically and asks the backend to do the same.
// Removing an unknown id is a no-op locally.
func deleteEntity[T kpi.Entity[T]](ctx context.Context, s *Store, b binding[T], id string) {
	s.mu.Lock()
	c := b.collection(s)
	prev, index, existed := c.remove(id)
	connected := s.invoker.Connected()
	var p *patch
	if connected {
		p = s.beginPatchLocked(patchKey(b.name, id), func() {
			if existed && c.indexOf(id) < 0 {
				c.insertAt(index, prev)
			}
		})
	}
	s.mu.Unlock()

	if !connected {
		return
	}
	if _, err := s.invoker.Invoke(ctx, b.delAction, id); err != nil {
		s.abort(ctx, p, b.delAction, err, deleteFailedMessage(b.delAction))
		return
	}
	s.commit(p)
}
