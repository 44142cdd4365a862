package sequencer

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-txform/pkg/txstatus"
)

// Gate decides which status transition advances to the next step.
type Gate struct {
	// Order enables automatic advancement.
	Order bool
	// Causal waits for confirmation (or scheduling) instead of a signature.
	Causal bool
	// StopOnFailed tears the step down without advancing when it fails.
	StopOnFailed bool
}

// DefaultGate advances on confirmation and stops on failure.
func DefaultGate() Gate {
	return Gate{Order: true, Causal: true, StopOnFailed: true}
}

// Advances reports whether s releases the next step.
func (g Gate) Advances(s txstatus.Status) bool {
	if !g.Order {
		return false
	}
	if g.Causal {
		return s.IsConfirmed() || s.Scheduled
	}
	return s.Signed
}

// CancelPolicy controls what Toggle does to an in-flight submission.
type CancelPolicy int

const (
	// CancelDetach hides the running sequence and stops listening; the
	// submission itself keeps running in the background.
	CancelDetach CancelPolicy = iota
	// CancelAbort additionally cancels the context the steps were dispatched
	// with.
	CancelAbort
)

func (p CancelPolicy) String() string {
	switch p {
	case CancelAbort:
		return "abort"
	default:
		return "detach"
	}
}

// ParseCancelPolicy accepts "detach" or "abort" (case-insensitive). An empty
// string yields CancelDetach.
func ParseCancelPolicy(raw string) (CancelPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "detach":
		return CancelDetach, nil
	case "abort":
		return CancelAbort, nil
	default:
		return CancelDetach, fmt.Errorf("sequencer: unknown cancel policy %q", raw)
	}
}
