package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/oib/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrInvalidKind  = errors.New("invalid counter kind")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidDelta = errors.New("counter delta must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateKind ensures the counter is one we know about.
func validateKind(kind model.CounterKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return nil
}

// validateDelta ensures counters only move forward.
func validateDelta(delta int64) error {
	if delta <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDelta, delta)
	}
	return nil
}
