package prompt

import (
	"context"
	"fmt"

	"github.com/goliatone/go-txform/pkg/field"
)

// Settler runs the binder's scheduler until no validation is pending.
type Settler func(ctx context.Context) error

// FieldConfig configures Ask.
type FieldConfig struct {
	InputConfig
	// Invalid is printed after a rejected input. Defaults to "invalid value".
	Invalid string
	// MaxAttempts bounds the number of rejected inputs; zero means unbounded.
	MaxAttempts int
}

// Ask prompts until b holds a valid value and returns its state. Each answer
// goes through b.SetDisplay; settle drives async validators to completion and
// the binder's blur correction is applied before the state is read.
func Ask(ctx context.Context, d Driver, b *field.Binder, settle Settler, cfg FieldConfig) (field.State, error) {
	invalid := cfg.Invalid
	if invalid == "" {
		invalid = "invalid value"
	}

	for attempt := 1; ; attempt++ {
		input := cfg.InputConfig
		if state := b.State(); state.HasInput {
			input.Default = state.RawInput
		}
		raw, err := d.Input(ctx, input)
		if err != nil {
			return field.State{}, err
		}

		if err := b.SetDisplay(raw); err != nil {
			return field.State{}, fmt.Errorf("prompt: %w", err)
		}
		if settle != nil {
			if err := settle(ctx); err != nil {
				return field.State{}, err
			}
		}
		b.Blur()

		state := b.State()
		if state.Valid {
			return state, nil
		}
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			return state, ErrTooManyAttempts
		}
		if err := d.Info(ctx, invalid); err != nil {
			return field.State{}, err
		}
	}
}
