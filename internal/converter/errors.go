package converter

import (
	"errors"
	"fmt"
)

// InvalidInputMessage replaces the result whenever the input cannot be converted
const InvalidInputMessage = "Input tidak valid"

// ErrInvalidInput is matched by every ConversionError
var ErrInvalidInput = errors.New("invalid input")

// ErrorType tells why an input was rejected
type ErrorType int

const (
	ErrorTypePattern ErrorType = iota
	ErrorTypeEmpty
	ErrorTypeParse
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypePattern:
		return "pattern"
	case ErrorTypeEmpty:
		return "empty"
	case ErrorTypeParse:
		return "parse"
	default:
		return "unknown"
	}
}

// ConversionError reports an input that is not a non-negative decimal number
type ConversionError struct {
	Type  ErrorType
	Input string
	Cause error
}

func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid input %q (%s): %v", e.Input, e.Type, e.Cause)
	}
	return fmt.Sprintf("invalid input %q (%s)", e.Input, e.Type)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrInvalidInput
}
