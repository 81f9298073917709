package contact

import (
	"context"
	"errors"
	"log"
	"maps"
	"sync"
	"time"
)

// DefaultResetDelay is how long a terminal submission status is shown
// before the form returns to Idle.
const DefaultResetDelay = 5 * time.Second

var (
	// ErrSubmitInProgress is returned when the form is mutated while a send
	// is outstanding.
	ErrSubmitInProgress = errors.New("contact form submission already in progress")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("contact form closed")
)

// Status is the lifecycle stage of a send attempt.
type Status int

const (
	Idle Status = iota
	Submitting
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a point-in-time copy of a Controller.
type State struct {
	Fields Fields
	Errors Errors
	Status Status
}

// Option configures a Controller.
type Option func(*Controller)

// WithResetDelay overrides DefaultResetDelay.
func WithResetDelay(d time.Duration) Option {
	return func(c *Controller) { c.resetDelay = d }
}

// Controller owns the values, validation errors and submission status of
// one visitor's contact form.
type Controller struct {
	sender     Sender
	resetDelay time.Duration

	mu       sync.Mutex
	fields   Fields
	errs     Errors
	status   Status
	timer    *time.Timer
	gen      uint64
	closed   bool
	lastSeen time.Time
}

// NewController creates an empty, idle form that delivers through sender.
func NewController(sender Sender, opts ...Option) *Controller {
	c := &Controller{
		sender:     sender,
		resetDelay: DefaultResetDelay,
		errs:       Errors{},
		lastSeen:   time.Now(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// UpdateField sets f to value and clears any error previously reported
// for f. It does not re-validate.
func (c *Controller) UpdateField(f Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkMutable(); err != nil {
		return err
	}
	if err := c.fields.Set(f, value); err != nil {
		return err
	}
	delete(c.errs, f)
	c.lastSeen = time.Now()
	return nil
}

// Submit validates the form and, when it is valid, sends it. Invalid input
// populates the errors and returns nil without contacting the sender.
// A send failure is reported through the Failed status, not the returned
// error; the fields are then kept so the visitor can retry.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkMutable(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.lastSeen = time.Now()
	if errs := Validate(c.fields); len(errs) > 0 {
		c.errs = errs
		c.mu.Unlock()
		return nil
	}
	c.stopTimer()
	c.status = Submitting
	c.errs = Errors{}
	msg := c.fields.ToMessage()
	c.mu.Unlock()

	err := c.sender.Send(ctx, msg)

	if err != nil {
		log.Printf("contact send failed: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.lastSeen = time.Now()
	if err != nil {
		c.status = Failed
	} else {
		c.status = Succeeded
		c.fields = Fields{}
		c.errs = Errors{}
	}
	c.scheduleReset()
	return nil
}

func (c *Controller) checkMutable() error {
	if c.closed {
		return ErrClosed
	}
	if c.status == Submitting {
		return ErrSubmitInProgress
	}
	return nil
}

// scheduleReset arms the timer that returns a terminal status to Idle.
// The generation check discards a timer that fired after being replaced.
func (c *Controller) scheduleReset() {
	c.stopTimer()
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.resetDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.gen != gen {
			return
		}
		if c.status == Succeeded || c.status == Failed {
			c.status = Idle
		}
		c.timer = nil
	})
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

// Close cancels any pending reset. The controller rejects further changes.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimer()
	c.closed = true
}

// State returns a copy of the current form state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Fields: c.fields, Errors: maps.Clone(c.errs), Status: c.status}
}

// Status returns the current submission status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ResetDelay reports how long a terminal status is held.
func (c *Controller) ResetDelay() time.Duration { return c.resetDelay }

func (c *Controller) touch(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = now
}

func (c *Controller) idleSince(now time.Time) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSeen), c.status != Submitting
}
