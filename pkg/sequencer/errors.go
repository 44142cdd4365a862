package sequencer

import "errors"

var (
	// ErrEmptyPlan is returned when toggling a sequencer without steps.
	ErrEmptyPlan = errors.New("sequencer: plan has no steps")
	// ErrNoSubmitter is reported when a step carries a pre-built transaction
	// but no Submitter is configured.
	ErrNoSubmitter = errors.New("sequencer: no submitter configured")
	// ErrNoStatus is reported when an operation returns neither a live status
	// nor an error.
	ErrNoStatus = errors.New("sequencer: operation returned no status")
	// ErrDisabled is returned when starting a run while the control is
	// disabled.
	ErrDisabled = errors.New("sequencer: control is disabled")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("sequencer: closed")
)
