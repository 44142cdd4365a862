// Package field binds a form field to user keystrokes, an optional live
// source.Source and a synchronous or asynchronous Validator.
//
// A Binder owns the field state (raw input, internal/external value,
// validity, validator metadata and the pending blur correction) and runs every
// edit through the validation pipeline. Each edit mints a fresh validation
// token; asynchronous results carrying an older token are dropped so slow
// validators can never overwrite newer input. Validated values are pushed back
// into reversible sources under an edit lock that swallows the source's
// same-tick echo.
//
// Binders are not safe for concurrent use. All methods must be called from the
// goroutine driving the loop.Scheduler the binder was built with; callbacks
// from sources and async validators are marshalled onto it automatically.
package field
