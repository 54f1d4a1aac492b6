// Package oib computes and verifies check digits for the Croatian personal
// identification number (OIB) using the ISO 7064 MOD 11,10 hybrid scheme.
//
// Everything in this package is pure: no I/O, no logging and no shared mutable
// state. All functions are safe for concurrent use. Randomness for Generate is
// injected through a Source.
package oib

import (
	"errors"
	"fmt"
)

const (
	// Length is the number of digits in a complete identifier.
	Length = 11
	// PayloadLength is the number of digits the check digit is derived from.
	PayloadLength = 10

	initialAccumulator = 10
)

// ErrInvalidPayload indicates a payload that is not exactly ten ASCII digits.
var ErrInvalidPayload = errors.New("payload must be exactly 10 digits")

// CheckDigit returns the MOD 11,10 check digit for a ten digit payload.
//
// The payload must consist of exactly ten ASCII digits. Passing anything else
// is a programming error and panics; use CheckDigitOf for untrusted input.
func CheckDigit(payload string) int {
	if !isPayload(payload) {
		panic(fmt.Sprintf("oib: CheckDigit called with %q: %v", payload, ErrInvalidPayload))
	}
	return checkDigitFromAccumulator(fold(payload, nil))
}

// CheckDigitOf is the checked variant of CheckDigit.
func CheckDigitOf(payload string) (int, error) {
	if !isPayload(payload) {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidPayload, payload)
	}
	return CheckDigit(payload), nil
}

// fold runs the MOD 11,10 accumulator over the payload digits and returns the
// final accumulator. When record is non-nil it receives one Step per digit.
// CheckDigit and Trace both go through here so their trajectories never drift.
func fold(payload string, record func(Step)) int {
	acc := initialAccumulator
	for i := 0; i < PayloadLength; i++ {
		digit := int(payload[i] - '0')
		step := Step{Index: i + 1, Digit: digit, BeforeAdd: acc}

		acc += digit
		step.AfterAdd = acc

		acc %= 10
		if acc == 0 {
			acc = 10
		}
		step.AfterMod10 = acc

		acc *= 2
		step.AfterDouble = acc

		acc %= 11
		step.AfterMod11 = acc

		if record != nil {
			record(step)
		}
	}
	return acc
}

// checkDigitFromAccumulator maps the final accumulator (1..10) to a digit.
func checkDigitFromAccumulator(acc int) int {
	check := 11 - acc
	if check == 10 {
		return 0
	}
	return check
}

func isPayload(s string) bool {
	return len(s) == PayloadLength && allASCIIDigits(s)
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	return s != "" && allASCIIDigits(s)
}

func allASCIIDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
