package field

import (
	"context"
	"sync"
)

// Outcome is what a Validator returns: nil for invalid input, Text, *Result,
// or an asynchronous outcome built with Async, FromChannel or Deferred.
type Outcome interface {
	outcome()
}

// Validator checks raw input against the prior state. ctx is cancelled once
// the edit is superseded or the binder closes.
type Validator func(ctx context.Context, raw string, prior State) Outcome

// Text is shorthand for a Result whose display, internal and external values
// all equal the string.
type Text string

func (Text) outcome() {}

// Result is a validator's verdict on valid input.
type Result struct {
	// Internal is the normalized representation. It is required.
	Internal any
	// External is exported to the bound source; nil falls back to Internal.
	External any
	// Display replaces the raw input when set.
	Display *string
	// Extra carries free-form validator metadata.
	Extra map[string]any
	// Corrected is adopted as the raw input on blur when it differs.
	Corrected string
}

func (*Result) outcome() {}

// DisplayString is a helper for populating Result.Display.
func DisplayString(s string) *string {
	return &s
}

// Observable is the subscription contract behind asynchronous outcomes. fn may
// be called zero or more times, from any goroutine; the returned func stops
// delivery.
type Observable interface {
	Subscribe(fn func(Outcome)) (cancel func())
}

type asyncOutcome struct {
	src Observable
}

func (asyncOutcome) outcome() {}

// Async wraps an Observable as an Outcome.
func Async(src Observable) Outcome {
	return asyncOutcome{src: src}
}

// FromChannel adapts a channel of outcomes. Delivery stops when the channel
// closes or the subscription is cancelled.
func FromChannel(ch <-chan Outcome) Outcome {
	if ch == nil {
		return asyncOutcome{}
	}
	return asyncOutcome{src: chanObservable{ch: ch}}
}

type chanObservable struct {
	ch <-chan Outcome
}

func (c chanObservable) Subscribe(fn func(Outcome)) func() {
	done := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-done:
				return
			case out, ok := <-c.ch:
				if !ok {
					return
				}
				select {
				case <-done:
					return
				default:
				}
				fn(out)
			}
		}
	}()
	return func() {
		once.Do(func() { close(done) })
	}
}

// Deferred is a hand-driven asynchronous outcome. Each Emit is delivered to
// current subscribers; late subscribers receive the latest emission first.
type Deferred struct {
	mu        sync.Mutex
	next      int
	listeners map[int]func(Outcome)
	latest    Outcome
	emitted   bool
}

// NewDeferred constructs a Deferred with no emissions.
func NewDeferred() *Deferred {
	return &Deferred{listeners: make(map[int]func(Outcome))}
}

// Outcome returns the Deferred wrapped for a Validator return.
func (d *Deferred) Outcome() Outcome {
	return Async(d)
}

// Subscribe registers fn.
func (d *Deferred) Subscribe(fn func(Outcome)) func() {
	d.mu.Lock()
	d.next++
	id := d.next
	d.listeners[id] = fn
	latest, emitted := d.latest, d.emitted
	d.mu.Unlock()

	if emitted {
		fn(latest)
	}
	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

// Emit delivers out to every subscriber.
func (d *Deferred) Emit(out Outcome) {
	d.mu.Lock()
	d.latest = out
	d.emitted = true
	listeners := make([]func(Outcome), 0, len(d.listeners))
	for id := 1; id <= d.next; id++ {
		if fn, ok := d.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(out)
	}
}

// Subscribers reports the number of active subscriptions.
func (d *Deferred) Subscribers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// normalize turns a synchronous outcome into a Result. A nil Result means the
// input was rejected.
func normalize(out Outcome) (*Result, error) {
	switch typed := out.(type) {
	case nil:
		return nil, nil
	case Text:
		s := string(typed)
		return &Result{Internal: s, External: s, Display: DisplayString(s)}, nil
	case *Result:
		if typed == nil {
			return nil, nil
		}
		if typed.Internal == nil {
			return nil, ErrInvalidValidatorResult
		}
		return typed, nil
	case asyncOutcome:
		return nil, ErrInvalidValidatorResult
	default:
		return nil, ErrInvalidValidatorResult
	}
}
