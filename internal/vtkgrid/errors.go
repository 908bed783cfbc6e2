package vtkgrid

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by the reader. Match them with errors.Is; use
// errors.As with *ParseError for the path, line and counts.
var (
	// ErrFileNotFound: the path does not exist or could not be read.
	ErrFileNotFound = errors.New("file not found")
	// ErrMalformedHeader: no DIMENSIONS line, or its values are not two
	// positive integers.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrMissingDataSection: no LOOKUP_TABLE line.
	ErrMissingDataSection = errors.New("missing data section")
	// ErrSampleCountMismatch: the number of samples differs from width*height.
	ErrSampleCountMismatch = errors.New("sample count mismatch")
	// ErrSampleParse: a data line is not a floating-point number.
	ErrSampleParse = errors.New("sample parse error")
)

// ParseError describes why a grid file was rejected.
type ParseError struct {
	Kind error  // one of the Err* sentinels
	Path string // empty when parsing an anonymous reader
	Line int    // 1-based line number, 0 when not tied to a line

	// Expected and Actual are set for ErrSampleCountMismatch.
	Expected int
	Actual   int

	Detail string
	Err    error // underlying cause, if any
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Path != "" || e.Line > 0 {
		b.WriteString(": ")
		if e.Path != "" {
			b.WriteString(e.Path)
		}
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
	}
	switch {
	case e.Detail != "":
		b.WriteString(": ")
		b.WriteString(e.Detail)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns the short name of an error kind, such as
// "MalformedHeader", or "" if err is not a reader error.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrFileNotFound):
		return "FileNotFound"
	case errors.Is(err, ErrMalformedHeader):
		return "MalformedHeader"
	case errors.Is(err, ErrMissingDataSection):
		return "MissingDataSection"
	case errors.Is(err, ErrSampleCountMismatch):
		return "SampleCountMismatch"
	case errors.Is(err, ErrSampleParse):
		return "SampleParseError"
	}
	return ""
}
