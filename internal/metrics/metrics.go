// Package metrics exports binder and sequencer activity as Prometheus
// counters.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-txform/pkg/field"
	"github.com/goliatone/go-txform/pkg/sequencer"
)

const namespace = "txform"

// Recorder implements field.Recorder and sequencer.Recorder. A nil *Recorder
// records nothing.
type Recorder struct {
	validations *prometheus.CounterVec
	dispatched  prometheus.Counter
	statuses    *prometheus.CounterVec
	sequences   *prometheus.CounterVec
}

var (
	_ field.Recorder     = (*Recorder)(nil)
	_ sequencer.Recorder = (*Recorder)(nil)
)

// New builds the collectors and registers them with reg. A nil reg leaves
// them unregistered. Collectors already registered by an earlier Recorder are
// reused.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Validation results handled by field binders, by outcome.",
		}, []string{"outcome"}),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_dispatched_total",
			Help:      "Transaction steps dispatched by sequencers.",
		}),
		statuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_status_total",
			Help:      "Status updates received for dispatched steps, by display tier.",
		}, []string{"tier"}),
		sequences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequences_total",
			Help:      "Finished sequencer runs, by result.",
		}, []string{"result"}),
	}
	if reg == nil {
		return r, nil
	}

	var err error
	if r.validations, err = register(reg, r.validations); err != nil {
		return nil, err
	}
	if r.dispatched, err = register(reg, r.dispatched); err != nil {
		return nil, err
	}
	if r.statuses, err = register(reg, r.statuses); err != nil {
		return nil, err
	}
	if r.sequences, err = register(reg, r.sequences); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("metrics: register collector: %w", err)
	}
	return c, nil
}

// ValidationOutcome implements field.Recorder.
func (r *Recorder) ValidationOutcome(outcome string) {
	if r == nil {
		return
	}
	r.validations.WithLabelValues(outcome).Inc()
}

// StepDispatched implements sequencer.Recorder.
func (r *Recorder) StepDispatched() {
	if r == nil {
		return
	}
	r.dispatched.Inc()
}

// StepStatus implements sequencer.Recorder.
func (r *Recorder) StepStatus(tier string) {
	if r == nil {
		return
	}
	r.statuses.WithLabelValues(tier).Inc()
}

// SequenceFinished implements sequencer.Recorder.
func (r *Recorder) SequenceFinished(result string) {
	if r == nil {
		return
	}
	r.sequences.WithLabelValues(result).Inc()
}
