package field

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/goliatone/go-txform/pkg/loop"
	"github.com/goliatone/go-txform/pkg/source"
)

// Binder drives a single form field.
type Binder struct {
	name         string
	sched        loop.Scheduler
	validator    Validator
	candidate    any
	src          source.Source
	reversible   bool
	formatter    func(any) string
	logger       *zap.Logger
	recorder     Recorder
	defaultValue string
	hasDefault   bool

	ctx    context.Context
	cancel context.CancelFunc

	state     State
	token     uint64
	editLock  atomic.Bool
	tie       source.Handle
	tied      bool
	pending   *pendingValidation
	resetTask *loop.Task
	pushed    bool
	lastPush  any
	closed    bool
	mounted   bool

	listeners    map[int]func(State)
	nextListener int
}

type pendingValidation struct {
	token       uint64
	prior       input
	unsubscribe func()
	cancel      context.CancelFunc
}

// input is the display part of State an edit overwrites before validating.
type input struct {
	raw         string
	hasInput    bool
	onlyDefault bool
}

// New constructs a binder scheduled on sched. Call Mount before use.
func New(sched loop.Scheduler, options ...Option) *Binder {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Binder{
		sched:     sched,
		formatter: defaultFormatter,
		logger:    zap.NewNop(),
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[int]func(State)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	if src, ok := source.As(b.candidate); ok {
		b.src = src
		b.reversible = source.IsReversible(src)
	}
	b.candidate = nil
	if b.name != "" {
		b.logger = b.logger.With(zap.String("field", b.name))
	}
	return b
}

// Mount initialises the state, validates the default (if any) and ties the
// bound source.
func (b *Binder) Mount() error {
	if b.closed {
		return ErrClosed
	}
	if b.mounted {
		return nil
	}
	b.mounted = true
	b.state = State{OnlyDefault: true}

	var err error
	if b.hasDefault {
		err = b.handleEdit(b.defaultValue, true)
	}
	if b.src != nil {
		b.tie = b.src.Tie(b.onSource)
		b.tied = true
	}
	return err
}

// State returns a snapshot of the field.
func (b *Binder) State() State {
	return b.state.clone()
}

// Pending reports whether an async validation for the live token is still
// outstanding.
func (b *Binder) Pending() bool {
	return b.state.Pending
}

// Bound reports whether a source satisfied the source contract.
func (b *Binder) Bound() bool {
	return b.src != nil
}

// Subscribe registers fn for state changes. The returned func removes it.
func (b *Binder) Subscribe(fn func(State)) func() {
	if fn == nil {
		return func() {}
	}
	b.nextListener++
	id := b.nextListener
	b.listeners[id] = fn
	return func() {
		delete(b.listeners, id)
	}
}

// SetDisplay records a keystroke. Unless the edit lock is held the new input
// is validated; any scheduled default reset is cancelled.
func (b *Binder) SetDisplay(raw string) error {
	if b.closed {
		return ErrClosed
	}
	b.cancelReset()
	if b.editLock.Load() {
		b.state.RawInput = raw
		b.state.HasInput = true
		b.state.OnlyDefault = false
		b.notify()
		return nil
	}
	return b.handleEdit(raw, false)
}

// SetDefault reconciles a new externally supplied default. The reset is
// deferred to a later tick and only happens while the user has not edited the
// field.
func (b *Binder) SetDefault(value string) {
	if b.closed {
		return
	}
	b.defaultValue = value
	b.hasDefault = true
	if !b.state.OnlyDefault {
		return
	}
	b.cancelReset()
	if b.state.HasInput && b.state.RawInput == value {
		return
	}

	b.resetTask = b.sched.Post(func() {
		b.resetTask = nil
		if b.closed || !b.state.OnlyDefault {
			return
		}
		if err := b.handleEdit(value, true); err != nil {
			b.logger.Error("default reset rejected", zap.Error(err))
		}
	})
}

// Blur adopts a pending correction as the raw input.
func (b *Binder) Blur() {
	if b.closed || !b.state.HasCorrection {
		return
	}
	corrected := b.state.Corrected
	b.state.Corrected = ""
	b.state.HasCorrection = false
	if corrected != b.state.RawInput {
		b.state.RawInput = corrected
		b.state.HasInput = true
	}
	b.notify()
}

// Close unties the source and abandons pending work.
func (b *Binder) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.cancelReset()
	b.dropPending()
	if b.tied {
		b.src.Untie(b.tie)
		b.tied = false
	}
	b.cancel()
	b.listeners = map[int]func(State){}
}

func (b *Binder) handleEdit(raw string, onlyDefault bool) error {
	b.token++
	token := b.token
	b.dropPending()

	prior := input{raw: b.state.RawInput, hasInput: b.state.HasInput, onlyDefault: b.state.OnlyDefault}
	b.state.RawInput = raw
	b.state.HasInput = true
	b.state.OnlyDefault = onlyDefault
	b.logger.Debug("validation token minted", zap.Uint64("token", token))

	validate := b.validator
	if validate == nil {
		validate = passthrough
	}

	ctx, cancel := context.WithCancel(b.ctx)
	out := validate(ctx, raw, b.state.clone())

	async, ok := out.(asyncOutcome)
	if !ok {
		cancel()
		return b.apply(token, prior, out)
	}
	if async.src == nil {
		cancel()
		return b.violation(token, prior, fmt.Errorf("%w: async outcome without source", ErrInvalidValidatorResult))
	}

	p := &pendingValidation{token: token, prior: prior, cancel: cancel}
	b.pending = p
	b.state.Pending = true
	b.notify()

	p.unsubscribe = async.src.Subscribe(func(emitted Outcome) {
		b.sched.Post(func() {
			b.deliver(p, emitted)
		})
	})
	return nil
}

func (b *Binder) deliver(p *pendingValidation, emitted Outcome) {
	if b.closed || b.pending != p || p.token != b.token {
		b.record(OutcomeStale)
		b.logger.Debug("stale validation result discarded", zap.Uint64("token", p.token), zap.Uint64("current", b.token))
		return
	}
	if err := b.apply(p.token, p.prior, emitted); err != nil {
		b.logger.Error("async validator broke result contract", zap.Error(err))
	}
}

func (b *Binder) apply(token uint64, prior input, out Outcome) error {
	result, err := normalize(out)
	if err != nil {
		return b.violation(token, prior, err)
	}
	if token != b.token {
		b.record(OutcomeStale)
		return nil
	}
	b.state.Pending = false

	if result == nil {
		b.record(OutcomeInvalid)
		b.state.Valid = false
		b.state.Internal = nil
		b.state.External = nil
		b.state.Extra = nil
		b.state.Corrected = ""
		b.state.HasCorrection = false
		b.resetSource()
		b.notify()
		return nil
	}

	b.record(OutcomeApplied)
	external := result.External
	if external == nil {
		external = result.Internal
	}
	b.state.Valid = true
	b.state.Internal = result.Internal
	b.state.External = external
	b.state.Extra = cloneValues(result.Extra)
	if result.Display != nil {
		b.state.RawInput = *result.Display
	}
	if result.Corrected != "" && result.Corrected != b.state.RawInput {
		b.state.Corrected = result.Corrected
		b.state.HasCorrection = true
	} else {
		b.state.Corrected = ""
		b.state.HasCorrection = false
	}
	b.pushSource(external)
	b.notify()
	return nil
}

// violation rolls the display back to what preceded the offending edit so the
// field keeps showing the input its validated values belong to.
func (b *Binder) violation(token uint64, prior input, err error) error {
	b.record(OutcomeViolation)
	if token == b.token {
		b.state.Pending = false
		b.state.RawInput = prior.raw
		b.state.HasInput = prior.hasInput
		b.state.OnlyDefault = prior.onlyDefault
		b.notify()
	}
	b.logger.Error("validator result contract violated", zap.Uint64("token", token), zap.Error(err))
	if b.name == "" {
		return fmt.Errorf("field: %w", err)
	}
	return fmt.Errorf("field %q: %w", b.name, err)
}

func (b *Binder) pushSource(value any) {
	if b.src == nil || !b.reversible {
		return
	}
	b.editLock.Store(true)
	defer b.editLock.Store(false)
	b.pushed = true
	b.lastPush = value
	b.src.Changed(value)
}

func (b *Binder) resetSource() {
	if b.src == nil || !b.reversible {
		return
	}
	b.editLock.Store(true)
	defer b.editLock.Store(false)
	b.pushed = false
	b.lastPush = nil
	b.src.Reset()
}

// onSource runs on the source's goroutine. The lock check must happen before
// marshalling so the echo of our own push is dropped.
func (b *Binder) onSource(value any) {
	if b.editLock.Load() {
		return
	}
	b.sched.Post(func() {
		b.applySource(value)
	})
}

func (b *Binder) applySource(value any) {
	if b.closed {
		return
	}
	if b.pushed && reflect.DeepEqual(value, b.lastPush) {
		return
	}
	b.pushed = false
	b.cancelReset()
	if err := b.handleEdit(b.formatter(value), false); err != nil {
		b.logger.Error("source value rejected", zap.Error(err))
	}
}

func (b *Binder) dropPending() {
	p := b.pending
	if p == nil {
		return
	}
	b.pending = nil
	b.state.Pending = false
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	if p.cancel != nil {
		p.cancel()
	}
}

func (b *Binder) cancelReset() {
	if b.resetTask != nil {
		b.resetTask.Cancel()
		b.resetTask = nil
	}
}

func (b *Binder) record(outcome string) {
	if b.recorder != nil {
		b.recorder.ValidationOutcome(outcome)
	}
}

func (b *Binder) notify() {
	if len(b.listeners) == 0 {
		return
	}
	snapshot := b.state.clone()
	for id := 1; id <= b.nextListener; id++ {
		if fn, ok := b.listeners[id]; ok {
			fn(snapshot)
		}
	}
}

func passthrough(_ context.Context, raw string, _ State) Outcome {
	return Text(raw)
}
