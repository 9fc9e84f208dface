// Package apperr holds sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidDate = errors.New("invalid date")
	ErrUnknownMood = errors.New("unknown mood")
)
