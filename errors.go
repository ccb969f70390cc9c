// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMaxDepth is wrapped by the *SyntaxError reported when a reader enters
// a container deeper than its configured maximum depth.
var ErrMaxDepth = errors.New("maximum depth exceeded")

// SyntaxError is the concrete type of errors reported for a token or
// character that is not valid in the current grammar state, including a
// close token that does not match the innermost open container.
type SyntaxError struct {
	Location LineCol // zero if the source has no text location
	Path     string  // path of the current token
	State    string  // name of the reader or writer state, if known
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return formatError(s.Message, s.Path, s.Location)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }

// ConversionError is the concrete type of errors reported when the payload
// of a token cannot be converted to the type requested by the caller.
//
// A ConversionError wraps strconv.ErrRange if the value is too large or small
// for the target type, and strconv.ErrSyntax if the text is not a valid
// representation of the target type.
type ConversionError struct {
	Text   string // the offending text
	Target string // the name of the requested type, e.g., "int32"
	Path   string // path of the current token

	err error
}

// Error satisfies the error interface.
func (c *ConversionError) Error() string {
	msg := fmt.Sprintf("could not convert %q to %s", c.Text, c.Target)
	if c.err != nil {
		msg += ": " + c.err.Error()
	}
	return formatError(msg, c.Path, LineCol{})
}

// Unwrap supports error wrapping.
func (c *ConversionError) Unwrap() error { return c.err }

// InputError is the concrete type of errors reported when the input ends in
// the middle of a token, or when the underlying source reports an error.
// An InputError wraps io.ErrUnexpectedEOF or the error from the source.
type InputError struct {
	Location LineCol
	Path     string
	Message  string

	err error
}

// Error satisfies the error interface.
func (e *InputError) Error() string {
	return formatError(e.Message, e.Path, e.Location)
}

// Unwrap supports error wrapping.
func (e *InputError) Unwrap() error { return e.err }

func formatError(msg, path string, loc LineCol) string {
	var sb strings.Builder
	if loc.Line > 0 {
		fmt.Fprintf(&sb, "at %s: ", loc)
	}
	sb.WriteString(msg)
	if path != "" {
		fmt.Fprintf(&sb, " (path %q)", path)
	}
	return sb.String()
}
