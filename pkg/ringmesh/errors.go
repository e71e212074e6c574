package ringmesh

import (
	"errors"
	"fmt"
)

// Generation errors. Use errors.Is to match them and errors.As to
// inspect the *ParameterError or *EvaluatorError details.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrEvaluator        = errors.New("evaluator returned a non-finite value")
)

// ParameterError reports a parameter outside its documented range.
type ParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%v: %s: %s", ErrInvalidParameter, e.Field, e.Reason)
	}
	return fmt.Sprintf("%v: %s = %v: %s", ErrInvalidParameter, e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

func invalid(field string, value any, reason string) error {
	return &ParameterError{Field: field, Value: value, Reason: reason}
}

// EvaluatorError reports a curve or gradient that produced NaN or Inf
// while sampling the vertex at At.
type EvaluatorError struct {
	Source string
	At     Polar
	Value  float32
}

func (e *EvaluatorError) Error() string {
	return fmt.Sprintf("%v: %s at %s: %v", ErrEvaluator, e.Source, e.At, e.Value)
}

func (e *EvaluatorError) Unwrap() error {
	return ErrEvaluator
}
