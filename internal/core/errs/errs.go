// Package errs defines the error taxonomy of the processing engine.
// Validation and structural errors fail a request outright before any
// metric is computed; metric-level failures never surface here, they are
// absorbed by the fallback chain in the metrics engine.
package errs

import (
	"fmt"
	"strings"
)

// DataValidationError reports malformed input tables: missing required
// columns or values that cannot be coerced.
type DataValidationError struct {
	Msg string
}

func (e *DataValidationError) Error() string {
	return "data validation: " + e.Msg
}

// Validation builds a DataValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &DataValidationError{Msg: fmt.Sprintf(format, args...)}
}

// GraphStructureError reports a graph that cannot be constructed: edges
// referencing vertices absent from the snapshot, self-loops, an empty
// vertex set, or more than one weakly-connected component. The offending
// set is reported in full, never just the first finding.
type GraphStructureError struct {
	Msg string

	// MissingVertices lists every vertex id referenced by an edge but
	// absent from the snapshot, when that is the cause.
	MissingVertices []string

	// SelfLoops lists every vertex with an edge to itself, when that is
	// the cause.
	SelfLoops []string

	// ComponentCount is the number of weakly-connected components, when
	// a multi-component graph is the cause.
	ComponentCount int
}

func (e *GraphStructureError) Error() string {
	msg := "graph structure: " + e.Msg
	if len(e.MissingVertices) > 0 {
		msg += ": " + strings.Join(e.MissingVertices, ", ")
	}
	if len(e.SelfLoops) > 0 {
		msg += ": " + strings.Join(e.SelfLoops, ", ")
	}
	return msg
}

// NotFoundError reports a requested entity (root vertex, snapshot) that
// does not exist in the loaded data.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// NotFound builds a NotFoundError for the given entity kind and key.
func NotFound(kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

// InvalidParameterError reports a request parameter outside its domain,
// such as a negative max_depth.
type InvalidParameterError struct {
	Param string
	Msg   string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Msg)
}

// InvalidParameter builds an InvalidParameterError.
func InvalidParameter(param, format string, args ...any) error {
	return &InvalidParameterError{Param: param, Msg: fmt.Sprintf(format, args...)}
}
