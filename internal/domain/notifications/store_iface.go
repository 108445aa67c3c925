package notifications

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateNotification(ctx context.Context, n Notice) error
	ListNotifications(ctx context.Context, limit, offset int) ([]Notice, error)
	CountNotifications(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
}
