package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/portfolio/internal/contact"
)

// Message is a contact form submission persisted in the inbox.
type Message struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Email     string     `db:"email"`
	Subject   string     `db:"subject"`
	Body      string     `db:"body"`
	ReadAt    *time.Time `db:"read_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// IsRead reports whether the admin has opened the message.
func (m *Message) IsRead() bool { return m.ReadAt != nil }

// MessageStore is the sqlx-backed contact inbox.
type MessageStore struct {
	db *sqlx.DB
}

// NewMessageStore creates a new MessageStore.
func NewMessageStore(db *sqlx.DB) *MessageStore {
	return &MessageStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *MessageStore) q(query string) string { return s.db.Rebind(query) }

// Send persists a submitted contact message. It lets the store act as the
// contact form's delivery backend.
func (s *MessageStore) Send(ctx context.Context, m contact.Message) error {
	_, err := s.Create(ctx, m.Name, m.Email, m.Subject, m.Message)
	return err
}

// Create inserts a new message and returns it.
func (s *MessageStore) Create(ctx context.Context, name, email, subject, body string) (*Message, error) {
	msg := &Message{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO contact_messages (id, name, email, subject, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), msg.ID, msg.Name, msg.Email, msg.Subject, msg.Body, msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// GetByID returns the message with the given id, or ErrNotFound.
func (s *MessageStore) GetByID(ctx context.Context, id string) (*Message, error) {
	var m Message
	err := s.db.GetContext(ctx, &m, s.q(`SELECT * FROM contact_messages WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns up to limit messages, newest first.
func (s *MessageStore) List(ctx context.Context, limit int) ([]*Message, error) {
	var msgs []*Message
	err := s.db.SelectContext(ctx, &msgs, s.q(`
		SELECT * FROM contact_messages
		ORDER BY created_at DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead stamps read_at on first read. Reading twice keeps the first time.
func (s *MessageStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE contact_messages SET read_at = ? WHERE id = ? AND read_at IS NULL
	`), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a message. Returns ErrNotFound if it does not exist.
func (s *MessageStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM contact_messages WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread returns the number of messages not yet opened.
func (s *MessageStore) CountUnread(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM contact_messages WHERE read_at IS NULL`)
	return n, err
}
