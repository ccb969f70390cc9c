// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"fmt"
	"io"
)

// An Anchor represents the current token of a stream. The methods of an
// Anchor report the token, its path and depth, and its location.
type Anchor interface {
	Token() Token       // Returns the current token
	Path() string       // Returns the path of the current token
	Depth() int         // Returns the depth of the current token
	Location() Location // Returns the location of the token, if known
}

// A Handler handles events from walking a token stream. If a method reports
// an error, the walk stops and that error is returned to the caller.
//
// The Anchor argument to a Handler method is only valid for the duration of
// that method call. If the method needs to retain information about the
// token after it returns, it must copy the relevant data.
type Handler interface {
	// Begin a new object, whose start token is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object, whose end token is at loc.
	EndObject(loc Anchor) error

	// Begin a new array, whose start token is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array, whose end token is at loc.
	EndArray(loc Anchor) error

	// Begin a new constructor, whose start token (carrying the name) is at
	// loc.
	BeginConstructor(loc Anchor) error

	// End the most-recently-opened constructor, whose end token is at loc.
	EndConstructor(loc Anchor) error

	// Begin a new object member, whose property name token is at loc.
	BeginMember(loc Anchor) error

	// End the current object member. The anchor is at the last token of the
	// member's value.
	EndMember(loc Anchor) error

	// Report a scalar value, or a raw value, at loc.
	Value(loc Anchor) error

	// EndOfInput reports the end of the input stream.
	EndOfInput(loc Anchor)
}

// CommentHandler is an optional interface that a Handler may implement to
// handle comment tokens. If the handler does not provide this method,
// comments are silently discarded.
type CommentHandler interface {
	// Process the comment at the specified location. The token value is the
	// text of the comment without its delimiters.
	Comment(loc Anchor)
}

// Stream walks the tokens of a Reader and delivers events to a Handler
// corresponding with the structure of the input.
type Stream struct {
	r Reader
}

// NewStream constructs a new Stream that consumes tokens from r.
func NewStream(r Reader) *Stream { return &Stream{r: r} }

// Token implements part of the Anchor interface.
func (s *Stream) Token() Token { return s.r.Token() }

// Path implements part of the Anchor interface.
func (s *Stream) Path() string { return s.r.Path() }

// Depth implements part of the Anchor interface.
func (s *Stream) Depth() int { return s.r.Depth() }

// Location implements part of the Anchor interface. If the underlying
// reader does not track locations, it returns a zero Location.
func (s *Stream) Location() Location {
	if lr, ok := s.r.(interface{ Location() Location }); ok {
		return lr.Location()
	}
	return Location{}
}

func (s *Stream) recoverParseError(errp *error) {
	if serr := recover(); serr != nil {
		if err, ok := serr.(streamError); ok {
			*errp = err.error
		} else {
			panic(serr)
		}
	}
}

// Parse walks the tokens of the input and delivers events to h until either
// an error occurs or the input is exhausted. Errors reported by the reader
// are returned unchanged.
func (s *Stream) Parse(h Handler) (err error) {
	defer s.recoverParseError(&err)

	for s.nextToken(h) {
		s.parseElement(h)
	}
	h.EndOfInput(s)
	return nil
}

// ParseOne walks a single value from the input and delivers events to h
// until the value is complete or an error occurs. If no further value is
// available from the input, ParseOne returns io.EOF. To read multiple values
// from a TextReader, enable its SupportMultipleContent option.
func (s *Stream) ParseOne(h Handler) (err error) {
	defer s.recoverParseError(&err)

	if !s.nextToken(h) {
		h.EndOfInput(s)
		return io.EOF
	}
	s.parseElement(h)
	return nil
}

// parseElement walks a single value of any type.
// Precondition: the current token is not a comment.
func (s *Stream) parseElement(h Handler) {
	switch tok := s.r.Kind(); tok {
	case StartObject:
		s.checkError(h.BeginObject(s))
		s.parseMembers(h)
		s.checkError(h.EndObject(s))
	case StartArray:
		s.checkError(h.BeginArray(s))
		s.parseElements(h, EndArray)
		s.checkError(h.EndArray(s))
	case StartConstructor:
		s.checkError(h.BeginConstructor(s))
		s.parseElements(h, EndConstructor)
		s.checkError(h.EndConstructor(s))
	case PropertyName, EndObject, EndArray, EndConstructor, None:
		s.syntaxError("unexpected %v", tok)
	default:
		s.checkError(h.Value(s))
	}
}

// parseMembers walks zero or more object members.
// Postcondition: the current token is EndObject.
func (s *Stream) parseMembers(h Handler) {
	for {
		if tok := s.advance(h); tok == EndObject {
			return
		} else if tok != PropertyName {
			s.syntaxError("expected %v or %v, got %v", PropertyName, EndObject, tok)
		}
		s.checkError(h.BeginMember(s))
		s.advance(h)
		s.parseElement(h)
		s.checkError(h.EndMember(s))
	}
}

// parseElements walks zero or more values, up to a token of kind end.
// Postcondition: the current token has kind end.
func (s *Stream) parseElements(h Handler, end Kind) {
	for {
		if tok := s.advance(h); tok == end {
			return
		}
		s.parseElement(h)
	}
}

// nextToken advances to the next token that is not a comment, and reports
// whether one was found. Comments are passed to h if it is a CommentHandler.
func (s *Stream) nextToken(h Handler) bool {
	for {
		ok, err := s.r.Read()
		if err != nil {
			panic(streamError{err})
		} else if !ok {
			return false
		}
		if s.r.Kind() == Comment {
			if ch, ok := h.(CommentHandler); ok {
				ch.Comment(s)
			}
			continue
		}
		return true
	}
}

// advance moves to the next token inside a container, which must exist.
func (s *Stream) advance(h Handler) Kind {
	if !s.nextToken(h) {
		panic(streamError{&InputError{
			Location: s.Location().Last,
			Path:     s.r.Path(),
			Message:  "unexpected end of input inside a container",
			err:      io.ErrUnexpectedEOF,
		}})
	}
	return s.r.Kind()
}

func (s *Stream) syntaxError(msg string, args ...any) {
	panic(streamError{&SyntaxError{
		Location: s.Location().First,
		Path:     s.r.Path(),
		State:    s.r.State().String(),
		Message:  fmt.Sprintf(msg, args...),
	}})
}

func (s *Stream) checkError(err error) {
	if err != nil {
		panic(streamError{err})
	}
}

// A streamError carries an error out of a walk, to be recovered by Parse.
type streamError struct{ error }

func (s streamError) Unwrap() error { return s.error }
