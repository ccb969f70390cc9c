// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// A Reader is a forward-only source of tokens. Each call to Read advances
// the reader to the next token; the current token is reported by Token.
//
// The ReadAs methods advance to the next content token (skipping comments)
// and coerce its payload to the requested type. A coerced payload replaces
// the payload of the current token, so a subsequent call to Token reports
// the converted value. If the next token is null, undefined, or the end of
// the input, the ReadAs methods report ok == false with no error.
type Reader interface {
	// Read advances to the next token. It reports false only when the input
	// is exhausted, and otherwise reports an error or a new current token.
	Read() (bool, error)

	// Token returns the current token.
	Token() Token

	// Kind returns the kind of the current token.
	Kind() Kind

	// Value returns the payload of the current token, or nil.
	Value() any

	// State reports the current grammar state of the reader.
	State() State

	// Depth reports the number of open containers enclosing the current
	// token. A start token is counted at the depth of its container.
	Depth() int

	// Path returns a human-readable path to the current token.
	Path() string

	// Skip skips the children of the current token. If the current token is
	// a property name, the reader first advances to its value. If the current
	// token starts a container, the reader advances to the matching end.
	// Otherwise Skip does nothing.
	Skip() error

	ReadAsInt32() (int32, bool, error)
	ReadAsInt64() (int64, bool, error)
	ReadAsString() (string, bool, error)
	ReadAsBoolean() (bool, bool, error)
	ReadAsDouble() (float64, bool, error)
	ReadAsDecimal() (decimal.Decimal, bool, error)
	ReadAsDateTime() (time.Time, bool, error)

	// ReadAsBytes returns nil without error if the next token is null.
	ReadAsBytes() ([]byte, error)

	// Close releases the resources held by the reader.
	Close() error
}

// State is the grammar state of a reader or writer, which determines the
// token kinds that may legally occur next.
type State byte

// Constants defining the valid State values.
const (
	Start            State = iota // nothing has been read or written
	Property                      // a property name, awaiting its value
	ObjectStart                   // an object start, awaiting its first member
	ObjectState                   // inside an object, after a member
	ArrayStart                    // an array start, awaiting its first value
	ArrayState                    // inside an array, after a value
	ConstructorStart              // a constructor start, awaiting its first argument
	ConstructorState              // inside a constructor, after an argument
	PostValue                     // a value has completed inside a container
	Closed                        // the reader or writer has been closed
	Finished                      // a complete top-level value has been read
	Error                         // an unrecoverable error has occurred
)

var stateStr = [...]string{
	Start:            "Start",
	Property:         "Property",
	ObjectStart:      "ObjectStart",
	ObjectState:      "Object",
	ArrayStart:       "ArrayStart",
	ArrayState:       "Array",
	ConstructorStart: "ConstructorStart",
	ConstructorState: "Constructor",
	PostValue:        "PostValue",
	Closed:           "Closed",
	Finished:         "Finished",
	Error:            "Error",
}

func (s State) String() string {
	if int(s) >= len(stateStr) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateStr[s]
}

// readType tells a concrete scanner which coercion, if any, the caller will
// apply to the next token, so that it can scan numbers and strings directly
// into the requested form.
type readType byte

const (
	readAny readType = iota
	readAsInt32
	readAsInt64
	readAsString
	readAsBoolean
	readAsDouble
	readAsDecimal
	readAsBytes
	readAsDateTime
)

// reader holds the state shared by all Reader implementations: the current
// token, the grammar state, and the stack of open containers. A concrete
// reader embeds a reader and sets next to its scanning method.
type reader struct {
	tok   Kind
	val   any
	state State
	pos   tracker
	opts  *ReaderOptions

	exceeded bool  // max depth has been exceeded in this excursion
	err      error // sticky error, once state == Error

	// next advances the concrete scanner by one token.
	next func(readType) (bool, error)

	// where reports the current line and column, if available.
	where func() LineCol
}

// Read advances to the next token.
func (r *reader) Read() (bool, error) { return r.next(readAny) }

// Token returns the current token.
func (r *reader) Token() Token { return Token{Kind: r.tok, Value: r.val} }

// Kind returns the kind of the current token.
func (r *reader) Kind() Kind { return r.tok }

// Value returns the payload of the current token.
func (r *reader) Value() any { return r.val }

// State reports the current grammar state.
func (r *reader) State() State { return r.state }

// Depth reports the number of containers enclosing the current token.
func (r *reader) Depth() int {
	d := len(r.pos.stack)
	if r.tok.IsStart() || r.pos.cur.kind == NoContainer {
		return d
	}
	return d + 1
}

// Path returns a human-readable path to the current token.
func (r *reader) Path() string {
	switch r.state {
	case ArrayStart, ConstructorStart, ObjectStart:
		return r.pos.path(false)
	}
	return r.pos.path(true)
}

// Skip skips the children of the current token.
func (r *reader) Skip() error {
	if r.tok == PropertyName {
		if _, err := r.Read(); err != nil {
			return err
		}
	}
	if r.tok.IsStart() {
		depth := r.Depth()
		for {
			ok, err := r.Read()
			if err != nil {
				return err
			} else if !ok || depth >= r.Depth() {
				break
			}
		}
	}
	return nil
}

// setToken makes (kind, val) the current token and updates the grammar state.
// If updateIndex is true, a scalar value advances the index of its container.
func (r *reader) setToken(kind Kind, val any, updateIndex bool) error {
	r.tok, r.val = kind, val
	switch kind {
	case StartObject:
		r.state = ObjectStart
		return r.push(Object)
	case StartArray:
		r.state = ArrayStart
		return r.push(Array)
	case StartConstructor:
		r.state = ConstructorStart
		return r.push(Constructor)
	case EndObject, EndArray, EndConstructor:
		return r.validateEnd(kind)
	case PropertyName:
		if r.pos.peek() != Object {
			return r.fail(r.syntaxErrorf("property name %q is not valid outside an object", val))
		}
		r.state = Property
		r.pos.cur.name, _ = val.(string)
	case Undefined, Integer, Float, Boolean, Null, Date, String, Raw, Bytes:
		r.setPostValueState(updateIndex)
	}
	return nil
}

// replaceValue replaces the current scalar token with a coerced version.
// The grammar state and container index are not affected.
func (r *reader) replaceValue(kind Kind, val any) { r.tok, r.val = kind, val }

func (r *reader) setPostValueState(updateIndex bool) {
	if r.pos.peek() != NoContainer || r.opts.multipleContent() {
		r.state = PostValue
	} else {
		r.setFinished()
	}
	if updateIndex {
		r.pos.finishValue()
	}
}

func (r *reader) setFinished() {
	if r.opts.multipleContent() {
		r.state = Start
	} else {
		r.state = Finished
	}
}

// setStateFromContainer sets the state to match the innermost container,
// after a delimiter between values has been consumed.
func (r *reader) setStateFromContainer() {
	switch r.pos.peek() {
	case Object:
		r.state = ObjectState
	case Array:
		r.state = ArrayState
	case Constructor:
		r.state = ConstructorState
	default:
		r.setFinished()
	}
}

func (r *reader) push(kind ContainerKind) error {
	r.pos.push(kind)
	if max := r.opts.maxDepth(); max > 0 && r.pos.open() > max && !r.exceeded {
		r.exceeded = true
		return &SyntaxError{
			Location: r.location(),
			Path:     r.Path(),
			State:    r.state.String(),
			Message:  fmt.Sprintf("the reader's MaxDepth of %d has been exceeded", max),
			err:      ErrMaxDepth,
		}
	}
	return nil
}

func (r *reader) pop() ContainerKind {
	kind := r.pos.pop()
	if max := r.opts.maxDepth(); max > 0 && r.pos.open() <= max {
		r.exceeded = false
	}
	return kind
}

func (r *reader) validateEnd(end Kind) error {
	if got := r.pop(); got.closeKind() != end {
		return r.fail(r.syntaxErrorf("token %v is not valid for closing %v", end, got))
	}
	if r.pos.peek() != NoContainer || r.opts.multipleContent() {
		r.state = PostValue
	} else {
		r.setFinished()
	}
	return nil
}

// fail puts r into the Error state with the given error, and returns err.
func (r *reader) fail(err error) error {
	r.state = Error
	r.err = err
	return err
}

func (r *reader) location() LineCol {
	if r.where == nil {
		return LineCol{}
	}
	return r.where()
}

func (r *reader) syntaxErrorf(msg string, args ...any) *SyntaxError {
	return &SyntaxError{
		Location: r.location(),
		Path:     r.Path(),
		State:    r.state.String(),
		Message:  fmt.Sprintf(msg, args...),
	}
}

func (r *reader) inputErrorf(err error, msg string, args ...any) *InputError {
	return &InputError{
		Location: r.location(),
		Path:     r.Path(),
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	}
}

func (r *reader) conversionError(text, target string, err error) *ConversionError {
	return &ConversionError{Text: text, Target: target, Path: r.Path(), err: err}
}

// readContent advances to the next token that is not a comment, and returns
// its kind. At the end of input it returns None.
func (r *reader) readContent(rt readType) (Kind, error) {
	for {
		ok, err := r.next(rt)
		if err != nil {
			return None, err
		} else if !ok {
			r.tok, r.val = None, nil
			return None, nil
		} else if r.tok != Comment {
			return r.tok, nil
		}
	}
}
