package loop

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Task is a unit of work queued on a Loop. Cancel prevents it from running if
// it has not started yet.
type Task struct {
	fn        func()
	mu        sync.Mutex
	cancelled bool
	started   bool
}

// Cancel reports whether the task was stopped before it ran. Calling Cancel on
// a nil task is a no-op.
func (t *Task) Cancel() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return false
	}
	t.cancelled = true
	return true
}

func (t *Task) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return false
	}
	t.started = true
	return true
}

// Scheduler is the subset of Loop consumed by binders and sequencers.
type Scheduler interface {
	Post(fn func()) *Task
}

// Loop queues tasks and executes them one tick at a time.
type Loop struct {
	mu     sync.Mutex
	queue  []*Task
	wake   chan struct{}
	logger *zap.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger routes recovered task panics to the provided logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New constructs an idle loop.
func New(options ...Option) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Post enqueues fn for the next tick. Safe for concurrent use.
func (l *Loop) Post(fn func()) *Task {
	task := &Task{fn: fn}
	if fn == nil {
		task.cancelled = true
		return task
	}

	l.mu.Lock()
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return task
}

// Len reports the number of queued tasks, cancelled ones included.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Tick runs the tasks that were queued when it was called and returns how many
// executed. Tasks posted while ticking wait for the next tick.
func (l *Loop) Tick() int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	ran := 0
	for _, task := range batch {
		if !task.claim() {
			continue
		}
		l.execute(task)
		ran++
	}
	return ran
}

// Drain ticks until the queue is empty or max ticks have run (max <= 0 means
// no limit). It returns the number of ticks performed.
func (l *Loop) Drain(max int) int {
	ticks := 0
	for l.Len() > 0 {
		if max > 0 && ticks >= max {
			break
		}
		l.Tick()
		ticks++
	}
	return ticks
}

// Run executes tasks as they arrive until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	return l.RunUntil(ctx, nil)
}

// RunUntil executes tasks as they arrive and returns nil once cond holds after
// a tick, or ctx.Err() when the context ends first. A nil cond never holds.
func (l *Loop) RunUntil(ctx context.Context, cond func() bool) error {
	for {
		l.Tick()
		if cond != nil && cond() {
			return nil
		}
		if l.Len() > 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) execute(task *Task) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("loop: task panicked", zap.String("panic", fmt.Sprint(rec)), zap.Stack("stack"))
		}
	}()
	task.fn()
}
