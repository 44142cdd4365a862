package source

import "sync"

// Handle identifies a Tie registration.
type Handle uint64

// Listener receives values pushed into a Source.
type Listener func(value any)

// Source is an external, observable container of a live value.
type Source interface {
	Tie(fn Listener) Handle
	Untie(h Handle)
	Changed(value any)
	Reset()
}

// Reader is implemented by sources that expose their latest value.
type Reader interface {
	Latest() (any, bool)
}

// Reversible is implemented by sources that accept values pushed back from a
// bound field. Sources that do not implement it are treated as one-way.
type Reversible interface {
	Reversible() bool
}

// As reports whether v satisfies Source and returns it typed. Nil interfaces
// and typed nil pointers are rejected.
func As(v any) (Source, bool) {
	if v == nil {
		return nil, false
	}
	src, ok := v.(Source)
	if !ok {
		return nil, false
	}
	if isNilPointer(src) {
		return nil, false
	}
	return src, true
}

// IsReversible reports whether the source accepts write-back.
func IsReversible(src Source) bool {
	if src == nil {
		return false
	}
	rev, ok := src.(Reversible)
	return ok && rev.Reversible()
}

func isNilPointer(src Source) bool {
	switch typed := src.(type) {
	case *Value:
		return typed == nil
	default:
		return false
	}
}

// Value is a thread-safe in-memory Source. Listeners are notified
// synchronously, on the caller's goroutine, in registration order.
type Value struct {
	mu         sync.Mutex
	value      any
	ready      bool
	next       Handle
	listeners  map[Handle]Listener
	order      []Handle
	oneWay     bool
	resetCount int
}

// ValueOption configures a Value.
type ValueOption func(*Value)

// WithInitial seeds the value without notifying anyone.
func WithInitial(value any) ValueOption {
	return func(v *Value) {
		v.value = value
		v.ready = true
	}
}

// ReadOnly marks the value as one-way; bound fields will not write back.
func ReadOnly() ValueOption {
	return func(v *Value) {
		v.oneWay = true
	}
}

// NewValue constructs an empty Value.
func NewValue(options ...ValueOption) *Value {
	v := &Value{listeners: make(map[Handle]Listener)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v
}

// Tie registers fn. When the value is already set, fn is invoked immediately
// with it.
func (v *Value) Tie(fn Listener) Handle {
	if fn == nil {
		return 0
	}
	v.mu.Lock()
	v.next++
	h := v.next
	v.listeners[h] = fn
	v.order = append(v.order, h)
	current, ready := v.value, v.ready
	v.mu.Unlock()

	if ready {
		fn(current)
	}
	return h
}

// Untie removes a registration. Unknown handles are ignored.
func (v *Value) Untie(h Handle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.listeners[h]; !ok {
		return
	}
	delete(v.listeners, h)
	for i, existing := range v.order {
		if existing == h {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}

// Changed stores value and notifies every listener.
func (v *Value) Changed(value any) {
	v.mu.Lock()
	v.value = value
	v.ready = true
	listeners := v.snapshot()
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(value)
	}
}

// Reset clears the value. Listeners are not notified, matching a source that
// has gone back to "not yet known".
func (v *Value) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = nil
	v.ready = false
	v.resetCount++
}

// Latest returns the current value and whether one is set.
func (v *Value) Latest() (any, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value, v.ready
}

// Reversible reports whether bound fields may write back.
func (v *Value) Reversible() bool {
	return !v.oneWay
}

// Resets reports how many times Reset was called.
func (v *Value) Resets() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resetCount
}

// Listeners reports the number of active registrations.
func (v *Value) Listeners() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.listeners)
}

func (v *Value) snapshot() []Listener {
	out := make([]Listener, 0, len(v.order))
	for _, h := range v.order {
		out = append(out, v.listeners[h])
	}
	return out
}

var (
	_ Source     = (*Value)(nil)
	_ Reader     = (*Value)(nil)
	_ Reversible = (*Value)(nil)
)
