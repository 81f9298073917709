package contact

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(func() *Controller { return NewController(&fakeSender{}) })
}

func TestRegistry_GetIsStablePerVisitor(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	a := r.Get("visitor-a")
	assert.Same(t, a, r.Get("visitor-a"))
	assert.NotSame(t, a, r.Get("visitor-b"))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SweepRemovesIdle(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	stale := r.Get("stale")
	time.Sleep(30 * time.Millisecond)
	fresh := r.Get("fresh")
	require.NoError(t, fresh.UpdateField(FieldName, "Ada"))

	removed := r.Sweep(20 * time.Millisecond)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, r.Len())
	assert.ErrorIs(t, stale.UpdateField(FieldName, "x"), ErrClosed)
	assert.Same(t, fresh, r.Get("fresh"))
	assert.NotSame(t, stale, r.Get("stale"))
}

func TestRegistry_GetRefreshesIdleClock(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	c := r.Get("returning")
	time.Sleep(30 * time.Millisecond)
	require.Same(t, c, r.Get("returning"))

	assert.Equal(t, 0, r.Sweep(20*time.Millisecond))
	assert.NoError(t, c.UpdateField(FieldName, "Ada"))
}

func TestRegistry_SweepKeepsSubmitting(t *testing.T) {
	sender := &fakeSender{gate: make(chan struct{})}
	r := NewRegistry(func() *Controller { return NewController(sender) })
	defer r.Close()

	c := r.Get("busy")
	fill(t, c, validFields())
	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	require.Eventually(t, func() bool { return c.Status() == Submitting }, time.Second, time.Millisecond)

	assert.Equal(t, 0, r.Sweep(0))
	assert.Equal(t, 1, r.Len())

	close(sender.gate)
	require.NoError(t, <-done)
}

func TestRegistry_RunClosesOnCancel(t *testing.T) {
	r := newTestRegistry()
	c := r.Get("visitor")

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		r.Run(ctx, time.Hour, time.Hour)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.Equal(t, 0, r.Len())
	assert.ErrorIs(t, c.Submit(context.Background()), ErrClosed)
}
