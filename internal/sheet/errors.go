package sheet

import (
	"errors"
	"fmt"
)

// ErrEmptyResults is returned when a recognised page holds no rectangles.
var ErrEmptyResults = errors.New("no score sheets on page")

// Error kinds.
const (
	NotMultipleOfThree  = "NotMultipleOfThree"
	MissingSectionLabel = "MissingSectionLabel"
	EmptyTable          = "EmptyTable"
	ColumnCountMismatch = "ColumnCountMismatch"
	InvalidNumber       = "InvalidNumber"

	MissingLabel     = "MissingLabel"
	RowCountMismatch = "RowCountMismatch"

	BaseValueMismatch   = "BaseValueMismatch"
	PanelScoreMismatch  = "PanelScoreMismatch"
	WeightedSumMismatch = "WeightedSumMismatch"
)

// StructuralError reports a page or table whose geometry does not match the
// template.
type StructuralError struct {
	Kind   string
	Detail string
	Err    error
}

func (e *StructuralError) Error() string {
	msg := "structural error (" + e.Kind + ")"
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Is matches any *StructuralError with the same kind, or any kind when the
// target kind is empty.
func (e *StructuralError) Is(target error) bool {
	t, ok := target.(*StructuralError)
	return ok && (t.Kind == "" || t.Kind == e.Kind)
}

// HeaderParseError reports a header row that could not be read.
type HeaderParseError struct {
	Kind   string
	Detail string
	Err    error
}

func (e *HeaderParseError) Error() string {
	msg := "header parse error (" + e.Kind + ")"
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *HeaderParseError) Unwrap() error { return e.Err }

func (e *HeaderParseError) Is(target error) bool {
	t, ok := target.(*HeaderParseError)
	return ok && (t.Kind == "" || t.Kind == e.Kind)
}

// ConsistencyError reports a total row that disagrees with its detail rows.
type ConsistencyError struct {
	Kind     string
	Expected float64
	Actual   float64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency error (%s): total %.3f, computed %.3f, diff %.3f",
		e.Kind, e.Expected, e.Actual, e.Diff())
}

// Diff is the signed difference between the printed total and the computed one.
func (e *ConsistencyError) Diff() float64 { return e.Expected - e.Actual }

func (e *ConsistencyError) Is(target error) bool {
	t, ok := target.(*ConsistencyError)
	return ok && (t.Kind == "" || t.Kind == e.Kind)
}

// Kind returns the error kind carried by err, or "" when err is not one of
// this package's errors.
func Kind(err error) string {
	var se *StructuralError
	if errors.As(err, &se) {
		return se.Kind
	}
	var he *HeaderParseError
	if errors.As(err, &he) {
		return he.Kind
	}
	var ce *ConsistencyError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if errors.Is(err, ErrEmptyResults) {
		return "EmptyResults"
	}
	return ""
}
