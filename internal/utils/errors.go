package utils

import (
	"errors"
	"fmt"
	"strings"
)

// AppError wraps an operation, human-facing message, and underlying error.
type AppError struct {
	Op  string
	Msg string
	Err error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}

// ValidationError reports malformed or missing request input. It is never retried.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid request: " + e.Msg
	}
	return fmt.Sprintf("invalid request: %s: %s", strings.Join(e.Fields, ", "), e.Msg)
}

// NewValidationError constructs a ValidationError for the named fields.
func NewValidationError(msg string, fields ...string) error {
	return &ValidationError{Fields: fields, Msg: msg}
}

// AggregationError reports an internal invariant violation while building a result.
type AggregationError struct {
	Msg string
	Err error
}

func (e *AggregationError) Error() string {
	if e.Err == nil {
		return "aggregation failed: " + e.Msg
	}
	return fmt.Sprintf("aggregation failed: %s: %v", e.Msg, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// NewAggregationError constructs an AggregationError.
func NewAggregationError(msg string, err error) error {
	return &AggregationError{Msg: msg, Err: err}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAggregation reports whether err is or wraps an AggregationError.
func IsAggregation(err error) bool {
	var target *AggregationError
	return errors.As(err, &target)
}
