package field

import (
	"fmt"

	"go.uber.org/zap"
)

// Outcome labels reported to a Recorder.
const (
	OutcomeApplied   = "applied"
	OutcomeInvalid   = "invalid"
	OutcomeStale     = "stale"
	OutcomeViolation = "violation"
)

// Recorder receives validation outcome counts. internal/metrics provides the
// Prometheus implementation.
type Recorder interface {
	ValidationOutcome(outcome string)
}

// Option configures a Binder.
type Option func(*Binder)

// WithName labels log entries for the field.
func WithName(name string) Option {
	return func(b *Binder) {
		b.name = name
	}
}

// WithValidator installs the validator. Without one, input is accepted as-is.
func WithValidator(v Validator) Option {
	return func(b *Binder) {
		b.validator = v
	}
}

// WithSource binds the field to candidate when it satisfies source.Source.
// Anything else is ignored and the field stays unbound.
func WithSource(candidate any) Option {
	return func(b *Binder) {
		b.candidate = candidate
	}
}

// WithDefault seeds the field with a default display value.
func WithDefault(value string) Option {
	return func(b *Binder) {
		b.defaultValue = value
		b.hasDefault = true
	}
}

// WithFormatter controls how source values are turned into display strings.
func WithFormatter(fn func(any) string) Option {
	return func(b *Binder) {
		if fn != nil {
			b.formatter = fn
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRecorder reports validation outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(b *Binder) {
		b.recorder = r
	}
}

func defaultFormatter(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
