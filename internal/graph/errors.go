package graph

import (
	"errors"
	"fmt"
)

// FormatError reports a persisted line that does not have exactly five
// comma-separated fields.
type FormatError struct {
	Path   string // file path, empty when decoding a stream
	Line   int    // 1-based line number
	Fields int    // number of fields found
}

func (e *FormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: expected 5 fields, found %d", e.Path, e.Line, e.Fields)
	}
	return fmt.Sprintf("line %d: expected 5 fields, found %d", e.Line, e.Fields)
}

// ParseError reports a timestamp field that is not an integer.
type ParseError struct {
	Path  string
	Line  int
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: invalid timestamp %q", e.Path, e.Line, e.Value)
	}
	return fmt.Sprintf("line %d: invalid timestamp %q", e.Line, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EmptyInputError is returned when a graph with no edges is supplied where at
// least one edge is required.
type EmptyInputError struct {
	// What names the input, e.g. "motif" or a file path.
	What string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: no edges", e.What)
}

// InvalidEdgeError reports an edge with a missing name or endpoint.
type InvalidEdgeError struct {
	Index  int // position in the input slice
	Reason string
}

func (e *InvalidEdgeError) Error() string {
	return fmt.Sprintf("edge %d: %s", e.Index, e.Reason)
}

// DuplicateEdgeError reports two edges sharing a name.
type DuplicateEdgeError struct {
	Name string
}

func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("duplicate edge name %q", e.Name)
}

// IsFormatError returns true if err is or wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsEmptyInputError returns true if err is or wraps an *EmptyInputError.
func IsEmptyInputError(err error) bool {
	var ee *EmptyInputError
	return errors.As(err, &ee)
}
