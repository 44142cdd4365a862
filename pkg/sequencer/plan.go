package sequencer

import (
	"context"

	"github.com/goliatone/go-txform/pkg/txstatus"
)

// Op dispatches a transaction and returns its live status.
type Op func(ctx context.Context) (txstatus.Live, error)

// Submitter submits pre-built transactions on behalf of the sequencer.
type Submitter interface {
	Submit(ctx context.Context, tx any) (txstatus.Live, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, tx any) (txstatus.Live, error)

// Submit calls fn.
func (fn SubmitterFunc) Submit(ctx context.Context, tx any) (txstatus.Live, error) {
	return fn(ctx, tx)
}

// Step is one transaction in a plan. Exactly one of Op or Tx should be set;
// Op wins when both are.
type Step struct {
	Name string
	Op   Op
	Tx   any
	// Ready reports whether the step can currently be dispatched. Nil means
	// always ready.
	Ready func() bool
}

// Call builds a step around an Op.
func Call(name string, op Op) Step {
	return Step{Name: name, Op: op}
}

// Submit builds a step around a pre-built transaction.
func Submit(name string, tx any) Step {
	return Step{Name: name, Tx: tx}
}

// Plan is either a single step or an ordered list of steps.
type Plan struct {
	steps  []Step
	single bool
}

// Single builds a one-step plan.
func Single(step Step) Plan {
	return Plan{steps: []Step{step}, single: true}
}

// Sequence builds an ordered plan.
func Sequence(steps ...Step) Plan {
	return Plan{steps: append([]Step(nil), steps...)}
}

// Len reports the number of steps.
func (p Plan) Len() int {
	return len(p.steps)
}

// IsSingle reports whether the plan was built with Single.
func (p Plan) IsSingle() bool {
	return p.single
}

// Step returns the step at index i.
func (p Plan) Step(i int) (Step, bool) {
	if i < 0 || i >= len(p.steps) {
		return Step{}, false
	}
	return p.steps[i], true
}

// Ready reports whether every step is dispatchable.
func (p Plan) Ready() bool {
	for _, step := range p.steps {
		if step.Ready != nil && !step.Ready() {
			return false
		}
	}
	return true
}
