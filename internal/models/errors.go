package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                  = errors.New("not found")
	ErrUnauthorized              = errors.New("unauthorized")
	ErrInvalidTransition         = errors.New("invalid transition")
	ErrSchedulingHorizonExceeded = errors.New("scheduling horizon exceeded")
	ErrBusy                      = errors.New("busy, retry later")
	ErrValidation                = errors.New("validation error")

	// ErrVersionConflict is retryable like ErrBusy.
	ErrVersionConflict = fmt.Errorf("%w: record was modified concurrently", ErrBusy)
)
