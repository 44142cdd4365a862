package txstatus

import (
	"strings"
	"sync"
	"time"
)

// Kind is the tagged-union view of a Status.
type Kind int

// Lifecycle kinds.
const (
	KindIdle Kind = iota
	KindRequested
	KindSigned
	KindBroadcast
	KindFinalized
	KindFailed
	KindScheduled
)

var kindNames = map[Kind]string{
	KindIdle:      "idle",
	KindRequested: "requested",
	KindSigned:    "signed",
	KindBroadcast: "broadcast",
	KindFinalized: "finalized",
	KindFailed:    "failed",
	KindScheduled: "scheduled",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Status is a snapshot of a transaction's boolean facets. Several facets may
// hold at once while the collaborator transitions between stages.
type Status struct {
	Requested bool
	Signing   bool
	Signed    bool
	Sending   bool
	Broadcast bool
	Confirmed bool
	Finalized bool
	Scheduled bool
	Failed    bool
	// Literal carries a bare textual status (for example "ready").
	Literal string
	// Detail holds a transaction hash, schedule time or error message.
	Detail string
}

// Requested reports a transaction waiting for the signer.
func Requested() Status { return Status{Requested: true} }

// Signing reports a transaction being signed.
func Signing() Status { return Status{Requested: true, Signing: true} }

// Signed reports a signed transaction with the given hash.
func Signed(hash string) Status { return Status{Signed: true, Detail: hash} }

// Sending reports a signed transaction being handed to the network.
func Sending(hash string) Status { return Status{Signed: true, Sending: true, Detail: hash} }

// Broadcast reports a transaction in the pool.
func Broadcast(hash string) Status { return Status{Signed: true, Broadcast: true, Detail: hash} }

// Confirmed reports a transaction included in a block.
func Confirmed(hash string) Status { return Status{Signed: true, Confirmed: true, Detail: hash} }

// Finalized reports a finalized transaction. Finalized implies confirmed.
func Finalized(hash string) Status {
	return Status{Signed: true, Confirmed: true, Finalized: true, Detail: hash}
}

// Failed reports a failed transaction.
func Failed(err error) Status {
	s := Status{Failed: true}
	if err != nil {
		s.Detail = err.Error()
	}
	return s
}

// Scheduled reports a transaction deferred until at.
func Scheduled(at time.Time) Status {
	return Status{Scheduled: true, Detail: at.UTC().Format(time.RFC3339)}
}

// Ready is the literal status some collaborators emit once the transaction
// is in the pool.
func Ready() Status { return Status{Literal: "ready"} }

// IsConfirmed reports whether the transaction reached a block.
func (s Status) IsConfirmed() bool {
	return s.Confirmed || s.Finalized
}

// Done reports whether the status is terminal for display purposes.
func (s Status) Done() bool {
	return s.IsConfirmed() || s.Scheduled || s.Failed
}

// Kind projects the facets onto the lifecycle union, latest stage first.
func (s Status) Kind() Kind {
	switch {
	case s.Failed:
		return KindFailed
	case s.Scheduled:
		return KindScheduled
	case s.Finalized, s.Confirmed:
		return KindFinalized
	case s.Broadcast, s.Literal == "ready":
		return KindBroadcast
	case s.Signed, s.Sending:
		return KindSigned
	case s.Requested, s.Signing:
		return KindRequested
	default:
		return KindIdle
	}
}

func (s Status) String() string {
	if s.Literal != "" {
		return s.Literal
	}
	var parts []string
	for _, facet := range []struct {
		set  bool
		name string
	}{
		{s.Requested, "requested"},
		{s.Signing, "signing"},
		{s.Signed, "signed"},
		{s.Sending, "sending"},
		{s.Broadcast, "broadcast"},
		{s.Confirmed, "confirmed"},
		{s.Finalized, "finalized"},
		{s.Scheduled, "scheduled"},
		{s.Failed, "failed"},
	} {
		if facet.set {
			parts = append(parts, facet.name)
		}
	}
	if len(parts) == 0 {
		return KindIdle.String()
	}
	return strings.Join(parts, "+")
}

// Live is a stream of statuses for one submitted transaction.
type Live interface {
	Subscribe(fn func(Status)) (cancel func())
	Current() Status
}

// Feed is an in-memory Live. Subscribers receive the current status on
// subscription and every later Push, synchronously on the pusher's goroutine.
type Feed struct {
	mu        sync.Mutex
	current   Status
	next      int
	listeners map[int]func(Status)
}

// NewFeed constructs a feed starting at initial.
func NewFeed(initial Status) *Feed {
	return &Feed{current: initial, listeners: make(map[int]func(Status))}
}

// Push records s and notifies subscribers.
func (f *Feed) Push(s Status) {
	f.mu.Lock()
	f.current = s
	listeners := make([]func(Status), 0, len(f.listeners))
	for id := 1; id <= f.next; id++ {
		if fn, ok := f.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// Subscribe registers fn and replays the current status.
func (f *Feed) Subscribe(fn func(Status)) func() {
	f.mu.Lock()
	f.next++
	id := f.next
	f.listeners[id] = fn
	current := f.current
	f.mu.Unlock()

	fn(current)
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// Current returns the latest status.
func (f *Feed) Current() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Subscribers reports the number of active subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

var _ Live = (*Feed)(nil)
