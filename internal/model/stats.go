package model

import (
	"fmt"
	"time"
)

// CounterKind names a usage counter.
type CounterKind string

const (
	// CounterGenerated counts identifiers handed out by the generator.
	CounterGenerated CounterKind = "generated"
	// CounterValidated counts validation requests with non-empty input.
	CounterValidated CounterKind = "validated"
)

// CounterKinds lists all known counters.
var CounterKinds = []CounterKind{CounterGenerated, CounterValidated}

// ParseCounterKind converts a string into a CounterKind.
func ParseCounterKind(s string) (CounterKind, error) {
	for _, k := range CounterKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown counter kind %q", s)
}

// Valid reports whether k is a known counter.
func (k CounterKind) Valid() bool {
	_, err := ParseCounterKind(string(k))
	return err == nil
}

// Stats holds usage totals. Counters live outside the checksum engine and are
// owned by whatever caller drives it.
type Stats struct {
	UpdatedAt time.Time `json:"updated_at"`
	Generated int64     `json:"generated"`
	Validated int64     `json:"validated"`
}

// Get returns the total for kind.
func (s Stats) Get(kind CounterKind) int64 {
	switch kind {
	case CounterGenerated:
		return s.Generated
	case CounterValidated:
		return s.Validated
	default:
		return 0
	}
}

// Total returns the sum of all counters.
func (s Stats) Total() int64 {
	return s.Generated + s.Validated
}
