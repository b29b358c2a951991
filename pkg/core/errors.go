package core

import "errors"

var (
	// ErrZeroVector is returned when a direction is requested from a zero-length vector
	ErrZeroVector = errors.New("cannot normalize zero-length vector")
)
