package errors

import "fmt"

// ValidateSameLength checks that two parallel parameter lists have equal length.
// Grid construction takes several parallel per-layer lists (spacings, widths,
// track caps); a mismatch is always a caller bug and is rejected up front.
func ValidateSameLength(name string, got, want int) error {
	if got != want {
		return New(ErrCodeInvalidConfig, "%s length = %d != %d", name, got, want)
	}
	return nil
}

// ValidatePositive checks that a named dimension is strictly positive.
func ValidatePositive(name string, value int) error {
	if value <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %d", name, value)
	}
	return nil
}

// ValidateNonNegative checks that a named dimension is zero or positive.
func ValidateNonNegative(name string, value int) error {
	if value < 0 {
		return New(ErrCodeInvalidInput, "%s must not be negative, got %d", name, value)
	}
	return nil
}

// ValidateRange checks that lo <= hi for a named pair of bounds.
func ValidateRange(name string, lo, hi int) error {
	if lo > hi {
		return New(ErrCodeInvalidInput, "%s: lower bound %d > upper bound %d", name, lo, hi)
	}
	return nil
}

// ValidateEven checks that a named dimension is an even integer. Track widths
// and spacings are kept even so half-track centers stay on integer coordinates.
func ValidateEven(name string, value int) error {
	if value%2 != 0 {
		return New(ErrCodeInvalidInput, "%s must be even, got %d", name, value)
	}
	return nil
}

// Describe formats an error with its code for log output.
// Errors without a structured code are passed through unchanged.
func Describe(err error) string {
	if code := GetCode(err); code != "" {
		return fmt.Sprintf("[%s] %s", code, UserMessage(err))
	}
	return err.Error()
}
