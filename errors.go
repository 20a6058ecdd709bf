package img2palette

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when a clustering parameter is out of
	// range. The concrete error is a *ParameterError naming the field.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyInput is returned when there are no samples to cluster.
	ErrEmptyInput = errors.New("no samples")
)

// ParameterError describes a rejected parameter. It matches
// ErrInvalidParameter with errors.Is.
type ParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s=%v %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

func invalidParameter(name string, value any, reason string) error {
	return &ParameterError{Name: name, Value: value, Reason: reason}
}
