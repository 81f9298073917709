package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joestump/portfolio/internal/contact"
	"github.com/joestump/portfolio/internal/store"
	"github.com/joestump/portfolio/internal/testutil"
)

func newMessageStore(t *testing.T) *store.MessageStore {
	t.Helper()
	return store.NewMessageStore(testutil.NewTestDB(t))
}

func TestMessageStore_CreateAndGet(t *testing.T) {
	ms := newMessageStore(t)
	ctx := context.Background()

	msg, err := ms.Create(ctx, "Ada", "ada@example.com", "Project inquiry", "Let's build an engine.")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("Create returned empty ID")
	}

	got, err := ms.GetByID(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != "ada@example.com" || got.Subject != "Project inquiry" || got.Body != "Let's build an engine." {
		t.Errorf("GetByID = %+v, want stored fields", got)
	}
	if got.IsRead() {
		t.Error("new message reported as read")
	}
}

func TestMessageStore_GetByID_NotFound(t *testing.T) {
	ms := newMessageStore(t)

	_, err := ms.GetByID(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMessageStore_SendPersists(t *testing.T) {
	ms := newMessageStore(t)
	ctx := context.Background()

	var sender contact.Sender = ms
	err := sender.Send(ctx, contact.Message{Name: "Grace", Email: "grace@example.com", Subject: "Compilers", Message: "Hello from the Navy."})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	msgs, err := ms.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("len(msgs) = %d, want 1", len(msgs))
	}
	if msgs[0].Name != "Grace" || msgs[0].Body != "Hello from the Navy." {
		t.Errorf("stored message = %+v", msgs[0])
	}
}

func TestMessageStore_ListNewestFirstWithLimit(t *testing.T) {
	ms := newMessageStore(t)
	ctx := context.Background()

	for _, subject := range []string{"first", "second", "third"} {
		if _, err := ms.Create(ctx, "Ada", "ada@example.com", subject, "body text here"); err != nil {
			t.Fatalf("Create %s: %v", subject, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	msgs, err := ms.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2", len(msgs))
	}
	if msgs[0].Subject != "third" || msgs[1].Subject != "second" {
		t.Errorf("order = [%s %s], want [third second]", msgs[0].Subject, msgs[1].Subject)
	}
}

func TestMessageStore_MarkRead(t *testing.T) {
	ms := newMessageStore(t)
	ctx := context.Background()

	msg, _ := ms.Create(ctx, "Ada", "ada@example.com", "Hello there", "Message body")
	if n, _ := ms.CountUnread(ctx); n != 1 {
		t.Fatalf("CountUnread = %d, want 1", n)
	}

	if err := ms.MarkRead(ctx, msg.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	got, _ := ms.GetByID(ctx, msg.ID)
	if !got.IsRead() {
		t.Error("message not marked read")
	}
	first := *got.ReadAt

	if err := ms.MarkRead(ctx, msg.ID); err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	got, _ = ms.GetByID(ctx, msg.ID)
	if !got.ReadAt.Equal(first) {
		t.Errorf("read_at changed from %v to %v", first, *got.ReadAt)
	}
	if n, _ := ms.CountUnread(ctx); n != 0 {
		t.Errorf("CountUnread = %d, want 0", n)
	}

	if err := ms.MarkRead(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("MarkRead(missing) = %v, want ErrNotFound", err)
	}
}

func TestMessageStore_Delete(t *testing.T) {
	ms := newMessageStore(t)
	ctx := context.Background()

	msg, _ := ms.Create(ctx, "Ada", "ada@example.com", "Hello there", "Message body")
	if err := ms.Delete(ctx, msg.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := ms.GetByID(ctx, msg.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrNotFound", err)
	}
	if err := ms.Delete(ctx, msg.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}
