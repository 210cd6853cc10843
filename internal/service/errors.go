package service

import (
	"errors"
	"strings"
)

var (
	ErrInvalidID   = errors.New("invalid domain id")
	ErrPersistence = errors.New("persistence error")
	ErrRateLookup  = errors.New("rate lookup error")
)

// ValidationError carries every problem found in a payload.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}
