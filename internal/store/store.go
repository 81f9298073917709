package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// MessageStoreIface exposes the contact inbox operations used by handlers.
type MessageStoreIface interface {
	Create(ctx context.Context, name, email, subject, body string) (*Message, error)
	GetByID(ctx context.Context, id string) (*Message, error)
	List(ctx context.Context, limit int) ([]*Message, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context) (int64, error)
}

// VisitStoreIface exposes page-view tracking.
type VisitStoreIface interface {
	RecordView(ctx context.Context, v PageView) error
	GetVisitStats(ctx context.Context) (VisitStats, error)
}
