package field

import "errors"

var (
	// ErrInvalidValidatorResult signals a validator broke the result contract
	// (a Result without an internal value, a nested async outcome, or an async
	// outcome without a source). The offending edit is abandoned.
	ErrInvalidValidatorResult = errors.New("field: invalid validator result")
	// ErrClosed is returned by operations on a binder after Close.
	ErrClosed = errors.New("field: binder closed")
)
