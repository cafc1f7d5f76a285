package types

import (
	"fmt"
	"strings"
)

// GeometryLoadError reports a surface file that is missing or cannot be parsed
type GeometryLoadError struct {
	Path string
	Err  error
}

func (e *GeometryLoadError) Error() string {
	return fmt.Sprintf("unable to load geometry %q: %v", e.Path, e.Err)
}

func (e *GeometryLoadError) Unwrap() error { return e.Err }

// NoTimestepError reports a post-processing directory without any
// integer-named time-step subdirectories
type NoTimestepError struct {
	Dir string
	Err error
}

func (e *NoTimestepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no time-step directories in %q: %v", e.Dir, e.Err)
	}
	return fmt.Sprintf("no time-step directories in %q", e.Dir)
}

func (e *NoTimestepError) Unwrap() error { return e.Err }

// FlowRateParseError names a supply patch file whose flow-rate token is unreadable
type FlowRateParseError struct {
	File string
}

func (e *FlowRateParseError) Error() string {
	return fmt.Sprintf("supply patch %q does not end in _<flow>.<ext>", e.File)
}

// MissingCaseContextError is returned when a derived metric is requested
// before the case's ceiling height or inlet flow rate was resolved
type MissingCaseContextError struct {
	CaseDir string
	Missing []string
}

func (e *MissingCaseContextError) Error() string {
	return fmt.Sprintf("case %q is missing resolved %s", e.CaseDir,
		strings.Join(e.Missing, " and "))
}

// InvalidMeshError reports a malformed intermediate surface
type InvalidMeshError struct {
	Reason string
}

func (e *InvalidMeshError) Error() string {
	return "invalid mesh: " + e.Reason
}

// NewInvalidMeshError formats a reason in the style of fmt.Errorf
func NewInvalidMeshError(format string, args ...interface{}) *InvalidMeshError {
	return &InvalidMeshError{Reason: fmt.Sprintf(format, args...)}
}

// RequestError reports an unusable request parameter
type RequestError struct {
	Field  string
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
