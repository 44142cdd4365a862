package sequencer

import "go.uber.org/zap"

// Result labels reported to a Recorder when a run ends.
const (
	ResultCompleted = "completed"
	ResultFailed    = "failed"
	ResultCancelled = "cancelled"
)

// Recorder receives sequencer events. internal/metrics provides the
// Prometheus implementation.
type Recorder interface {
	StepDispatched()
	StepStatus(tier string)
	SequenceFinished(result string)
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithGate overrides DefaultGate.
func WithGate(g Gate) Option {
	return func(s *Sequencer) {
		s.gate = g
	}
}

// WithCancelPolicy selects what Toggle does to an in-flight submission.
func WithCancelPolicy(p CancelPolicy) Option {
	return func(s *Sequencer) {
		s.policy = p
	}
}

// WithSubmitter configures how pre-built transactions are submitted.
func WithSubmitter(sub Submitter) Option {
	return func(s *Sequencer) {
		s.submitter = sub
	}
}

// WithCaption sets the label shown while idle.
func WithCaption(caption string) Option {
	return func(s *Sequencer) {
		if caption != "" {
			s.caption = caption
		}
	}
}

// WithDisabled sets the control's own disabled input.
func WithDisabled(disabled bool) Option {
	return func(s *Sequencer) {
		s.disabled = disabled
	}
}

// WithEnabled sets the control's own enabled input.
func WithEnabled(enabled bool) Option {
	return func(s *Sequencer) {
		s.enabled = enabled
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Sequencer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder reports sequencer events to r.
func WithRecorder(r Recorder) Option {
	return func(s *Sequencer) {
		s.recorder = r
	}
}
