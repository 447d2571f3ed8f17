package stats

import (
	"errors"
	"fmt"
)

// Error kinds. Compare with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUndefined    = errors.New("undefined result")
	ErrOverflow     = errors.New("effectively infinite")
)

// Error describes a rejected computation: which operation, which parameter,
// and the offending value.
type Error struct {
	Op    string
	Param string
	Value float64
	Err   error
}

func (e *Error) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s=%g", e.Op, e.Err, e.Param, e.Value)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalid(op, param string, value float64) error {
	return &Error{Op: op, Param: param, Value: value, Err: ErrInvalidInput}
}

func undefined(op, param string, value float64) error {
	return &Error{Op: op, Param: param, Value: value, Err: ErrUndefined}
}

func overflow(op, param string, value float64) error {
	return &Error{Op: op, Param: param, Value: value, Err: ErrOverflow}
}
