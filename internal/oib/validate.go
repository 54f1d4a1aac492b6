package oib

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Reason identifies why an identifier was rejected. The zero value means the
// identifier is valid.
type Reason string

// Rejection reasons, in the order the checks run.
const (
	ReasonNone             Reason = ""
	ReasonEmpty            Reason = "EMPTY"
	ReasonNonDigit         Reason = "NON_DIGIT"
	ReasonWrongLength      Reason = "WRONG_LENGTH"
	ReasonAllZero          Reason = "ALL_ZERO"
	ReasonRepeatedDigit    Reason = "REPEATED_DIGIT"
	ReasonChecksumMismatch Reason = "CHECKSUM_MISMATCH"
)

// Reasons lists every rejection reason in check order.
var Reasons = []Reason{
	ReasonEmpty,
	ReasonNonDigit,
	ReasonWrongLength,
	ReasonAllZero,
	ReasonRepeatedDigit,
	ReasonChecksumMismatch,
}

func (r Reason) String() string {
	if r == ReasonNone {
		return "VALID"
	}
	return string(r)
}

// LengthIssue refines ReasonWrongLength for messaging.
type LengthIssue int

// Length issues.
const (
	LengthOK LengthIssue = iota
	LengthTooShort
	LengthTooLong
)

func (l LengthIssue) String() string {
	switch l {
	case LengthTooShort:
		return "too_short"
	case LengthTooLong:
		return "too_long"
	default:
		return "ok"
	}
}

// Outcome is the result of Validate.
type Outcome struct {
	Normalized  string
	Reason      Reason
	Length      int
	LengthIssue LengthIssue
	// Expected and Provided are only meaningful when HasDigits is true, which
	// is the case for valid identifiers and for checksum mismatches.
	Expected  int
	Provided  int
	HasDigits bool
	Valid     bool
}

// ErrInvalid is the sentinel wrapped by every ValidationError.
var ErrInvalid = errors.New("invalid OIB")

// ValidationError exposes a rejected Outcome through the error interface.
type ValidationError struct {
	Outcome Outcome
}

func (e *ValidationError) Error() string {
	o := e.Outcome
	switch o.Reason {
	case ReasonWrongLength:
		return fmt.Sprintf("%s: %s (%d digits, %s)", ErrInvalid, o.Reason, o.Length, o.LengthIssue)
	case ReasonChecksumMismatch:
		return fmt.Sprintf("%s: %s (expected %d, got %d)", ErrInvalid, o.Reason, o.Expected, o.Provided)
	default:
		return fmt.Sprintf("%s: %s", ErrInvalid, o.Reason)
	}
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Err returns nil for a valid outcome and a *ValidationError otherwise.
func (o Outcome) Err() error {
	if o.Valid {
		return nil
	}
	return &ValidationError{Outcome: o}
}

// Strip removes all whitespace from s.
func Strip(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// IsDegenerate reports whether s is a non-empty run of one repeated character.
func IsDegenerate(s string) bool {
	if s == "" {
		return false
	}
	return strings.Count(s, s[:1]) == len(s)
}

// Validate checks an identifier. Whitespace anywhere in the input is ignored.
// Checks run in a fixed order and stop at the first failure; malformed input
// always yields an invalid Outcome, never a panic.
func Validate(input string) Outcome {
	clean := Strip(input)
	out := Outcome{Normalized: clean, Length: len(clean)}

	switch {
	case clean == "":
		out.Reason = ReasonEmpty
		return out
	case !allASCIIDigits(clean):
		out.Reason = ReasonNonDigit
		out.Length = len([]rune(clean))
		return out
	case len(clean) != Length:
		out.Reason = ReasonWrongLength
		if len(clean) < Length {
			out.LengthIssue = LengthTooShort
		} else {
			out.LengthIssue = LengthTooLong
		}
		return out
	case clean[0] == '0' && IsDegenerate(clean):
		out.Reason = ReasonAllZero
		return out
	case IsDegenerate(clean):
		out.Reason = ReasonRepeatedDigit
		return out
	}

	out.Expected = CheckDigit(clean[:PayloadLength])
	out.Provided = int(clean[PayloadLength] - '0')
	out.HasDigits = true
	if out.Expected != out.Provided {
		out.Reason = ReasonChecksumMismatch
		return out
	}
	out.Valid = true
	return out
}

// IsValid is shorthand for Validate(input).Valid.
func IsValid(input string) bool {
	return Validate(input).Valid
}
