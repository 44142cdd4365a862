package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrTooManyAttempts is returned by Ask once MaxAttempts inputs were
	// rejected.
	ErrTooManyAttempts = errors.New("prompt: too many invalid attempts")
)
