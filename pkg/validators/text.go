package validators

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-txform/pkg/field"
)

// TextOptions configures Text.
type TextOptions struct {
	// Pattern, when set, must match the trimmed input.
	Pattern *regexp.Regexp
	// MinLength and MaxLength bound the trimmed input in runes. Zero means
	// unbounded.
	MinLength int
	MaxLength int
	// AllowEmpty accepts blank input.
	AllowEmpty bool
}

// Text validates free text. The trimmed value is offered as the blur
// correction.
func Text(opts TextOptions) field.Validator {
	return func(_ context.Context, raw string, _ field.State) field.Outcome {
		value := strings.TrimSpace(raw)
		if value == "" && !opts.AllowEmpty {
			return nil
		}
		n := utf8.RuneCountInString(value)
		if opts.MinLength > 0 && n < opts.MinLength {
			return nil
		}
		if opts.MaxLength > 0 && n > opts.MaxLength {
			return nil
		}
		if opts.Pattern != nil && !opts.Pattern.MatchString(value) {
			return nil
		}
		return &field.Result{Internal: value, External: value, Corrected: value}
	}
}
