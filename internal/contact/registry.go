package contact

import (
	"context"
	"sync"
	"time"
)

// Registry keeps one Controller per visitor for as long as the visitor is
// active.
type Registry struct {
	newController func() *Controller

	mu    sync.Mutex
	forms map[string]*Controller
}

// NewRegistry creates a Registry that builds controllers with factory.
func NewRegistry(factory func() *Controller) *Registry {
	return &Registry{newController: factory, forms: make(map[string]*Controller)}
}

// Get returns the controller for visitorID, creating it on first use.
// Fetching a controller counts as activity, so a sweep racing the caller
// does not close it.
func (r *Registry) Get(visitorID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.forms[visitorID]
	if !ok {
		c = r.newController()
		r.forms[visitorID] = c
	}
	c.touch(time.Now())
	return c
}

// Len returns the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// Sweep closes and forgets controllers untouched for longer than maxIdle.
// Controllers with a send in flight are kept. It returns how many were
// removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, c := range r.forms {
		idle, sweepable := c.idleSince(now)
		if sweepable && idle > maxIdle {
			c.Close()
			delete(r.forms, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled, then closes every
// controller.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			r.Sweep(maxIdle)
		case <-ctx.Done():
			r.Close()
			return
		}
	}
}

// Close closes every controller and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.forms {
		c.Close()
		delete(r.forms, id)
	}
}
