// Package cgerr defines the structured error type shared by the kernels,
// execution spaces and the CG driver.
package cgerr

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors.
type ErrorType int

const (
	// Invalid argument errors: malformed matrices, mismatched lengths.
	ErrTypeInvalidArg ErrorType = iota
	// Numerical errors such as CG breakdown.
	ErrTypeNumerical
	// Device errors: OCCA device creation, allocation, kernel build.
	ErrTypeDevice
	// Execution errors raised while a kernel launch is in flight.
	ErrTypeExecution
)

// String returns the error type as a string.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeNumerical:
		return "Numerical"
	case ErrTypeDevice:
		return "Device"
	case ErrTypeExecution:
		return "Execution"
	default:
		return "Unknown"
	}
}

// Error is a structured error with the failing operation and an optional cause.
type Error struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error in %s: %s: %v", e.Type, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Type, e.Op, e.Message)
}

// Unwrap allows error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewInvalidArgError creates an invalid argument error.
func NewInvalidArgError(op, format string, args ...interface{}) error {
	return &Error{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewNumericalError creates a numerical error wrapping cause (may be nil).
func NewNumericalError(op, message string, cause error) error {
	return &Error{
		Type:    ErrTypeNumerical,
		Op:      op,
		Message: message,
		Err:     cause,
	}
}

// NewDeviceError creates a device error.
func NewDeviceError(op, message string, cause error) error {
	return &Error{
		Type:    ErrTypeDevice,
		Op:      op,
		Message: message,
		Err:     cause,
	}
}

// NewExecutionError creates an execution error.
func NewExecutionError(op, message string, cause error) error {
	return &Error{
		Type:    ErrTypeExecution,
		Op:      op,
		Message: message,
		Err:     cause,
	}
}

// LengthMismatch is the common precondition failure of the vector kernels.
func LengthMismatch(op string, want, got int) error {
	return NewInvalidArgError(op, "length mismatch: want %d, got %d", want, got)
}

func is(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// IsInvalidArg reports whether err carries an invalid argument error.
func IsInvalidArg(err error) bool { return is(err, ErrTypeInvalidArg) }

// IsNumerical reports whether err carries a numerical error.
func IsNumerical(err error) bool { return is(err, ErrTypeNumerical) }

// IsDevice reports whether err carries a device error.
func IsDevice(err error) bool { return is(err, ErrTypeDevice) }

// IsExecution reports whether err carries an execution error.
func IsExecution(err error) bool { return is(err, ErrTypeExecution) }
