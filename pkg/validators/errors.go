package validators

import "errors"

var (
	// ErrInvalidAddress is returned by DecodeAddress for malformed input.
	ErrInvalidAddress = errors.New("validators: invalid address")
	// ErrChecksumMismatch is returned by DecodeAddress when the checksum does
	// not match the payload.
	ErrChecksumMismatch = errors.New("validators: address checksum mismatch")
	// ErrInvalidAmount is returned by ParseAmount.
	ErrInvalidAmount = errors.New("validators: invalid amount")
	// ErrNotFound is returned by Registry lookups.
	ErrNotFound = errors.New("validators: validator not found")
)
