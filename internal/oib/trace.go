package oib

// Step records the accumulator around each operation of one fold iteration.
type Step struct {
	Index       int `json:"step"`
	Digit       int `json:"digit"`
	BeforeAdd   int `json:"before_add"`
	AfterAdd    int `json:"after_add"`
	AfterMod10  int `json:"after_mod10"`
	AfterDouble int `json:"after_double"`
	AfterMod11  int `json:"after_mod11"`
}

// Trace returns the ten steps of the check digit computation for an
// identifier. The input must be exactly eleven ASCII digits once whitespace
// is removed; otherwise Trace returns nil. The check digit itself is not
// inspected, so Trace works on identifiers that fail validation.
func Trace(input string) []Step {
	clean := Strip(input)
	if len(clean) != Length || !allASCIIDigits(clean) {
		return nil
	}

	steps := make([]Step, 0, PayloadLength)
	fold(clean[:PayloadLength], func(s Step) {
		steps = append(steps, s)
	})
	return steps
}

// FinalAccumulator returns the accumulator after the last step, or 0 for an
// empty trace.
func FinalAccumulator(steps []Step) int {
	if len(steps) == 0 {
		return 0
	}
	return steps[len(steps)-1].AfterMod11
}

// CheckDigitFromTrace derives the check digit from a complete trace.
func CheckDigitFromTrace(steps []Step) (int, bool) {
	if len(steps) != PayloadLength {
		return 0, false
	}
	return checkDigitFromAccumulator(FinalAccumulator(steps)), true
}
