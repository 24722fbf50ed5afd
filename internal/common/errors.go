// Package common defines sentinel errors shared by repositories, services and
// the HTTP layer. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Validation errors.
	ErrValidation    = errors.New("validation failed")
	ErrInvalidAmount = errors.New("bid amount must be a positive number")
)
