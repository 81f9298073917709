package contact

import (
	"context"
	"time"
)

// Message is what a visitor submitted through the form.
type Message struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Sender delivers a validated message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, m Message) error

func (f SenderFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }

// SimulatedSender waits for Delay and then reports success. It stands in
// for a real backend in demos.
type SimulatedSender struct {
	Delay time.Duration
}

func (s SimulatedSender) Send(ctx context.Context, m Message) error {
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MultiSender calls each sender in order and stops at the first error.
type MultiSender []Sender

func (ms MultiSender) Send(ctx context.Context, m Message) error {
	for _, s := range ms {
		if err := s.Send(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
