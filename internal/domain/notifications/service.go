package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notice not found")

// Notice is an operator-facing message, typically a store alert such as a
// failed save.
type Notice struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func New(store StoreAPI) *Service {
	if store == nil {
		store = NewMemoryStore(0)
	}
	return &Service{store: store, now: time.Now}
}

func (s *Service) Create(ctx context.Context, ntype, title, body string) (Notice, error) {
	n := Notice{
		ID:        uuid.NewString(),
		Type:      ntype,
		Title:     title,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return Notice{}, err
	}
	return n, nil
}

// Alert records a store alert. It satisfies the store's Notifier so failed
// saves and loads show up on the notice board.
func (s *Service) Alert(ctx context.Context, message string) {
	slog.Warn("store alert", "message", message)
	if _, err := s.Create(ctx, TypeStoreAlert, "Action needed", message); err != nil {
		slog.Warn("notice create failed", "err", err)
	}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Notice, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListNotifications(ctx, limit, offset)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.CountNotifications(ctx)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.store.MarkRead(ctx, id, s.now().UTC())
}
