package testsupport

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-txform/pkg/field"
	"github.com/goliatone/go-txform/pkg/loop"
	"github.com/goliatone/go-txform/pkg/sequencer"
	"github.com/goliatone/go-txform/pkg/txstatus"
)

// Timeout bounds every wait performed by these helpers.
const Timeout = 2 * time.Second

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustMount mounts b or fails the test.
func MustMount(t *testing.T, b *field.Binder) {
	t.Helper()
	if err := b.Mount(); err != nil {
		t.Fatalf("mount: %v", err)
	}
}

// Settle runs l until cond holds, failing the test after Timeout.
func Settle(t *testing.T, l *loop.Loop, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	if err := l.RunUntil(ctx, cond); err != nil {
		t.Fatalf("settle: %v", err)
	}
}

// Chain is a scripted collaborator: every step gets its own feed, starting at
// Requested, and every dispatch is recorded.
type Chain struct {
	mu    sync.Mutex
	Feeds []*txstatus.Feed
	calls []int
	ctxs  []context.Context
}

// NewChain builds a chain with n feeds.
func NewChain(n int) *Chain {
	c := &Chain{}
	for i := 0; i < n; i++ {
		c.Feeds = append(c.Feeds, txstatus.NewFeed(txstatus.Requested()))
	}
	return c
}

// Steps returns one sequencer step per feed.
func (c *Chain) Steps() []sequencer.Step {
	steps := make([]sequencer.Step, len(c.Feeds))
	for i := range c.Feeds {
		idx := i
		steps[i] = sequencer.Call(fmt.Sprintf("step-%d", idx), func(ctx context.Context) (txstatus.Live, error) {
			c.mu.Lock()
			c.calls = append(c.calls, idx)
			c.ctxs = append(c.ctxs, ctx)
			c.mu.Unlock()
			return c.Feeds[idx], nil
		})
	}
	return steps
}

// Plan wraps Steps in a sequence.
func (c *Chain) Plan() sequencer.Plan {
	return sequencer.Sequence(c.Steps()...)
}

// Calls returns the dispatched step indexes, in order.
func (c *Chain) Calls() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.calls...)
}

// Contexts returns the context each dispatch received.
func (c *Chain) Contexts() []context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]context.Context(nil), c.ctxs...)
}
