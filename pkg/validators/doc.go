// Package validators provides field.Validator implementations for the
// dashboard's address, balance and free-text inputs. Each constructor takes a
// configuration value up front; the returned validator is a plain function
// and can be shared between binders.
package validators
