package sequencer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-txform/pkg/loop"
	"github.com/goliatone/go-txform/pkg/txstatus"
)

const defaultCaption = "Submit"

// State is the raw sequencer position.
type State struct {
	Index   int
	Total   int
	Current *txstatus.Status
}

// Sequencer dispatches a Plan one step at a time.
type Sequencer struct {
	sched     loop.Scheduler
	plan      Plan
	gate      Gate
	policy    CancelPolicy
	submitter Submitter
	caption   string
	disabled  bool
	enabled   bool
	logger    *zap.Logger
	recorder  Recorder

	index       int
	current     *txstatus.Status
	runID       string
	gen         uint64
	unsubscribe func()
	runCtx      context.Context
	abort       context.CancelFunc
	closed      bool

	listeners    map[int]func(View)
	nextListener int
}

// New constructs an idle sequencer for plan.
func New(sched loop.Scheduler, plan Plan, options ...Option) *Sequencer {
	s := &Sequencer{
		sched:     sched,
		plan:      plan,
		gate:      DefaultGate(),
		caption:   defaultCaption,
		enabled:   true,
		logger:    zap.NewNop(),
		listeners: make(map[int]func(View)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// State returns the current position.
func (s *Sequencer) State() State {
	out := State{Index: s.index, Total: s.plan.Len()}
	if s.current != nil {
		current := *s.current
		out.Current = &current
	}
	return out
}

// RunID identifies the latest run; empty before the first Toggle.
func (s *Sequencer) RunID() string {
	return s.runID
}

// SetDisabled updates the control's own disabled input.
func (s *Sequencer) SetDisabled(disabled bool) {
	s.disabled = disabled
	s.notify()
}

// SetEnabled updates the control's own enabled input.
func (s *Sequencer) SetEnabled(enabled bool) {
	s.enabled = enabled
	s.notify()
}

// Disabled reports whether the control should refuse clicks: a step is not
// ready, or the control's own inputs disable it.
func (s *Sequencer) Disabled() bool {
	return s.disabled || !s.enabled || !s.plan.Ready()
}

// Subscribe registers fn for view changes. The returned func removes it.
func (s *Sequencer) Subscribe(fn func(View)) func() {
	if fn == nil {
		return func() {}
	}
	s.nextListener++
	id := s.nextListener
	s.listeners[id] = fn
	return func() {
		delete(s.listeners, id)
	}
}

// Toggle is the single click entry point. While a status is displayed it
// resets the control to idle, even when disabled; otherwise it starts the
// plan from the first step.
func (s *Sequencer) Toggle() error {
	if s.closed {
		return ErrClosed
	}
	if s.current != nil {
		s.cancel()
		return nil
	}
	if s.plan.Len() == 0 {
		return ErrEmptyPlan
	}
	if s.Disabled() {
		return ErrDisabled
	}

	s.index = 0
	s.runID = uuid.NewString()
	s.logger.Debug("sequence started",
		zap.String("run_id", s.runID),
		zap.Int("steps", s.plan.Len()),
		zap.Bool("single", s.plan.IsSingle()),
	)
	s.startRun()
	s.step()
	s.notify()
	return nil
}

// Advance dispatches the next step by hand. It is meant for plans gated with
// Order disabled and reports whether a step was dispatched.
func (s *Sequencer) Advance() bool {
	if s.closed || s.current == nil || s.index >= s.plan.Len() {
		return false
	}
	s.teardown()
	s.step()
	s.notify()
	return true
}

// Close stops listening to the in-flight step. Under CancelAbort the
// submission context is cancelled as well.
func (s *Sequencer) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.teardown()
	if s.policy == CancelAbort && s.abort != nil {
		s.abort()
	}
	s.listeners = map[int]func(View){}
}

type runCtxKey struct{}

// startRun mints the context every step of the run is dispatched with.
// Detached runs keep theirs alive, so only CancelAbort ever cancels it.
func (s *Sequencer) startRun() {
	ctx, cancel := context.WithCancel(context.Background())
	s.runCtx = context.WithValue(ctx, runCtxKey{}, s.runID)
	s.abort = cancel
}

// RunIDFromContext returns the run id attached to a step's dispatch context.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runCtxKey{}).(string)
	return id, ok
}

func (s *Sequencer) step() {
	step, ok := s.plan.Step(s.index)
	if !ok {
		return
	}
	idx := s.index
	s.index++
	s.gen++
	gen := s.gen

	requested := txstatus.Requested()
	s.current = &requested
	if s.recorder != nil {
		s.recorder.StepDispatched()
	}
	s.logger.Debug("step dispatched",
		zap.String("run_id", s.runID),
		zap.Int("step", idx),
		zap.String("name", step.Name),
	)

	live, err := s.dispatch(s.runCtx, step)
	if err != nil {
		s.logger.Warn("step dispatch failed", zap.String("run_id", s.runID), zap.Int("step", idx), zap.Error(err))
		s.handleStatus(gen, idx, txstatus.Failed(err))
		return
	}

	unsubscribe := live.Subscribe(func(st txstatus.Status) {
		s.sched.Post(func() {
			s.handleStatus(gen, idx, st)
		})
	})
	if gen == s.gen {
		s.unsubscribe = unsubscribe
	} else {
		unsubscribe()
	}
}

func (s *Sequencer) dispatch(ctx context.Context, step Step) (txstatus.Live, error) {
	var (
		live txstatus.Live
		err  error
	)
	switch {
	case step.Op != nil:
		live, err = step.Op(ctx)
	case step.Tx != nil:
		if s.submitter == nil {
			return nil, ErrNoSubmitter
		}
		live, err = s.submitter.Submit(ctx, step.Tx)
	default:
		return nil, fmt.Errorf("sequencer: step %q has neither op nor transaction", step.Name)
	}
	if err != nil {
		return nil, err
	}
	if live == nil {
		return nil, ErrNoStatus
	}
	return live, nil
}

func (s *Sequencer) handleStatus(gen uint64, idx int, st txstatus.Status) {
	if s.closed || gen != s.gen || s.current == nil {
		return
	}
	s.current = &st
	if s.recorder != nil {
		s.recorder.StepStatus(string(txstatus.Classify(st).Tier))
	}

	last := idx >= s.plan.Len()-1
	switch {
	case st.Failed && s.gate.StopOnFailed:
		s.teardown()
		s.finish(ResultFailed)
	case !last && s.gate.Advances(st):
		s.teardown()
		s.step()
	case last && st.Done():
		s.teardown()
		if st.Failed {
			s.finish(ResultFailed)
		} else {
			s.finish(ResultCompleted)
		}
	}
	s.notify()
}

func (s *Sequencer) cancel() {
	wasDone := s.current.Done()
	s.teardown()
	if s.policy == CancelAbort && s.abort != nil {
		s.abort()
		s.abort = nil
	}
	s.current = nil
	if !wasDone {
		s.finish(ResultCancelled)
	}
	s.notify()
}

func (s *Sequencer) teardown() {
	s.gen++
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Sequencer) finish(result string) {
	s.logger.Debug("sequence finished", zap.String("run_id", s.runID), zap.String("result", result), zap.Int("index", s.index))
	if s.recorder != nil {
		s.recorder.SequenceFinished(result)
	}
}

func (s *Sequencer) notify() {
	if len(s.listeners) == 0 {
		return
	}
	view := s.View()
	for id := 1; id <= s.nextListener; id++ {
		if fn, ok := s.listeners[id]; ok {
			fn(view)
		}
	}
}
