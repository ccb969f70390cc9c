// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"errors"
	"fmt"
	"io"
)

// An Emitter renders the tokens accepted by a Writer. The Writer validates
// the token sequence and calls the formatting hooks at the points where a
// text encoding would need them; an Emitter that does not format text may
// implement the hooks as no-ops.
type Emitter interface {
	// EmitToken renders a single token.
	EmitToken(Token) error

	// WriteValueDelimiter is called before a value or property name that
	// follows a sibling in the same container.
	WriteValueDelimiter() error

	// WriteIndent is called before a token that begins a new line in an
	// indented rendering.
	WriteIndent() error

	// WriteIndentSpace is called between a property name and its value.
	WriteIndentSpace() error

	// WriteRaw renders text verbatim, without affecting the grammar state.
	WriteRaw(text string) error
}

// A Writer validates a sequence of tokens against the JSON grammar and
// passes them to an Emitter. Writing a token that is not valid in the
// current state reports a *SyntaxError and leaves the state unchanged.
// If the Emitter reports an error, the Writer enters the Error state and
// reports that error for all subsequent writes.
type Writer struct {
	out   Emitter
	opts  *WriterOptions
	state State
	pos   tracker
	err   error // sticky, once state == Error
}

// NewWriter constructs a Writer that delivers tokens to out.
// If opts == nil, default options are used.
func NewWriter(out Emitter, opts *WriterOptions) *Writer {
	return &Writer{out: out, opts: opts}
}

// State reports the current grammar state of w.
func (w *Writer) State() State { return w.state }

// Depth reports the number of containers currently open in w.
func (w *Writer) Depth() int { return w.pos.open() }

// Path returns a human-readable path to the most recently written token.
func (w *Writer) Path() string {
	switch w.state {
	case ArrayStart, ConstructorStart, ObjectStart:
		return w.pos.path(false)
	}
	return w.pos.path(true)
}

// tokenClass is the row of the transition table for a token kind.
type tokenClass byte

const (
	classNone tokenClass = iota
	classStartObject
	classStartArray
	classStartConstructor
	classProperty
	classComment
	classRaw
	classValue
)

func classOf(k Kind) tokenClass {
	switch k {
	case StartObject:
		return classStartObject
	case StartArray:
		return classStartArray
	case StartConstructor:
		return classStartConstructor
	case PropertyName:
		return classProperty
	case Comment:
		return classComment
	case Raw:
		return classRaw
	case Integer, Float, String, Boolean, Null, Undefined, Date, Bytes:
		return classValue
	}
	return classNone
}

// transitions[class][state] is the state after writing a token of the given
// class in the given state. The PostValue and Finished states do not occur
// in a writer.
var transitions = func() [classValue + 1][Error + 1]State {
	const (
		xx = Error
		oS = ObjectStart
		aS = ArrayStart
		cS = ConstructorStart
		pp = Property
		ob = ObjectState
		ar = ArrayState
		co = ConstructorState
		st = Start
	)
	return [...][Error + 1]State{
		//                     Start Property ObjStart Object ArrStart Array CtorStart Ctor PostValue Closed Finished Error
		classNone:             {xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx},
		classStartObject:      {oS, oS, xx, xx, oS, oS, oS, oS, xx, xx, xx, xx},
		classStartArray:       {aS, aS, xx, xx, aS, aS, aS, aS, xx, xx, xx, xx},
		classStartConstructor: {cS, cS, xx, xx, cS, cS, cS, cS, xx, xx, xx, xx},
		classProperty:         {pp, xx, pp, pp, xx, xx, xx, xx, xx, xx, xx, xx},
		classComment:          {st, pp, oS, ob, aS, ar, co, co, xx, xx, xx, xx},
		classRaw:              {st, pp, oS, ob, aS, ar, co, co, xx, xx, xx, xx},
		classValue:            {st, ob, xx, xx, ar, ar, co, co, xx, xx, xx, xx},
	}
}()

// autoComplete validates a token of the given kind in the current state,
// calls the formatting hooks that precede it, and advances the state.
func (w *Writer) autoComplete(kind Kind) error {
	if w.err != nil {
		return w.err
	}
	next := transitions[classOf(kind)][w.state]
	if next == Error {
		return w.syntaxErrorf("token %v in state %v would result in an invalid JSON object", kind, w.state)
	}

	switch w.state {
	case ObjectState, ArrayState, ConstructorState:
		if kind != Comment {
			if err := w.out.WriteValueDelimiter(); err != nil {
				return w.fail(err)
			}
		}
	case Property:
		if err := w.out.WriteIndentSpace(); err != nil {
			return w.fail(err)
		}
	}

	indent := kind == PropertyName && w.state != Start
	switch w.state {
	case ArrayState, ArrayStart, ConstructorState, ConstructorStart:
		indent = true
	}
	if indent {
		if err := w.out.WriteIndent(); err != nil {
			return w.fail(err)
		}
	}
	w.state = next
	return nil
}

func (w *Writer) emit(tok Token) error {
	if err := w.out.EmitToken(tok); err != nil {
		return w.fail(err)
	}
	return nil
}

func (w *Writer) writeStart(kind Kind, val any) error {
	if err := w.autoComplete(kind); err != nil {
		return err
	}
	w.pos.push(containerFor(kind))
	return w.emit(Token{Kind: kind, Value: val})
}

func (w *Writer) writeValue(kind Kind, val any) error {
	if err := w.autoComplete(kind); err != nil {
		return err
	}
	w.pos.finishValue()
	return w.emit(Token{Kind: kind, Value: val})
}

// WriteStartObject writes the start of an object.
func (w *Writer) WriteStartObject() error { return w.writeStart(StartObject, nil) }

// WriteStartArray writes the start of an array.
func (w *Writer) WriteStartArray() error { return w.writeStart(StartArray, nil) }

// WriteStartConstructor writes the start of a constructor with the given name.
func (w *Writer) WriteStartConstructor(name string) error {
	return w.writeStart(StartConstructor, name)
}

// WritePropertyName writes the name of an object member.
func (w *Writer) WritePropertyName(name string) error {
	if err := w.autoComplete(PropertyName); err != nil {
		return err
	}
	w.pos.cur.name = name
	return w.emit(Token{Kind: PropertyName, Value: name})
}

// WriteEndObject closes the innermost open object, and any containers
// opened inside it.
func (w *Writer) WriteEndObject() error { return w.writeEnd(Object) }

// WriteEndArray closes the innermost open array, and any containers opened
// inside it.
func (w *Writer) WriteEndArray() error { return w.writeEnd(Array) }

// WriteEndConstructor closes the innermost open constructor, and any
// containers opened inside it.
func (w *Writer) WriteEndConstructor() error { return w.writeEnd(Constructor) }

// WriteEnd closes the innermost open container.
func (w *Writer) WriteEnd() error { return w.writeEnd(w.pos.peek()) }

// CloseTo closes open containers until at most depth remain open.
func (w *Writer) CloseTo(depth int) error {
	for w.pos.open() > depth {
		if err := w.WriteEnd(); err != nil {
			return err
		}
	}
	return nil
}

// writeEnd closes the innermost open container of the given kind, along with
// all the containers opened inside it.
func (w *Writer) writeEnd(kind ContainerKind) error {
	if w.err != nil {
		return w.err
	}
	levels := w.levelsToComplete(kind)
	if levels == 0 {
		return w.syntaxErrorf("no token to close")
	}
	for i := 0; i < levels; i++ {
		if err := w.closeOne(); err != nil {
			return err
		}
	}
	return nil
}

// levelsToComplete returns the number of containers that must be closed to
// close the innermost open container of the given kind, or 0 if there is no
// such container.
func (w *Writer) levelsToComplete(kind ContainerKind) int {
	if kind == NoContainer || w.state == Closed {
		return 0
	} else if w.pos.cur.kind == kind {
		return 1
	}
	for i := len(w.pos.stack) - 1; i >= 0; i-- {
		if w.pos.stack[i].kind == kind {
			return len(w.pos.stack) - i + 1
		}
	}
	return 0
}

// closeOne closes the innermost open container. A property awaiting its
// value is given a null value first.
func (w *Writer) closeOne() error {
	if w.state == Property {
		if err := w.WriteNull(); err != nil {
			return err
		}
	}
	if w.state != ObjectStart && w.state != ArrayStart {
		if err := w.out.WriteIndent(); err != nil {
			return w.fail(err)
		}
	}
	end := w.pos.pop().closeKind()
	if err := w.emit(Token{Kind: end}); err != nil {
		return err
	}
	switch w.pos.peek() {
	case Object:
		w.state = ObjectState
	case Array:
		w.state = ArrayState
	case Constructor:
		w.state = ConstructorState
	default:
		w.state = Start
	}
	return nil
}

// Close completes any open containers, unless the NoAutoComplete option is
// set, and puts w into the Closed state. If the CloseOutput option is set and
// the Emitter implements io.Closer, it is also closed.
func (w *Writer) Close() error {
	if w.state == Closed {
		return nil
	}
	var err error
	if w.opts.autoComplete() && w.err == nil {
		err = w.CloseTo(0)
	}
	w.state = Closed
	if w.opts.closeOutput() {
		if c, ok := w.out.(io.Closer); ok {
			err = errors.Join(err, c.Close())
		}
	}
	return err
}

// WriteComment writes a comment. A comment does not count as a value.
func (w *Writer) WriteComment(text string) error {
	if err := w.autoComplete(Comment); err != nil {
		return err
	}
	return w.emit(Token{Kind: Comment, Value: text})
}

// WriteRaw passes text to the Emitter verbatim. The grammar state is not
// affected, so the caller is responsible for the validity of the output.
func (w *Writer) WriteRaw(text string) error {
	if w.err != nil {
		return w.err
	}
	if err := w.out.WriteRaw(text); err != nil {
		return w.fail(err)
	}
	return nil
}

// WriteRawValue writes text verbatim as a Raw token standing for a complete
// value.
func (w *Writer) WriteRawValue(text string) error {
	if err := w.autoComplete(Undefined); err != nil {
		return err
	}
	w.pos.finishValue()
	return w.emit(Token{Kind: Raw, Value: text})
}

// Write writes a single token. The payload of a value token must have the
// type documented for its kind.
func (w *Writer) Write(tok Token) error {
	switch tok.Kind {
	case None:
		return nil
	case StartObject:
		return w.WriteStartObject()
	case StartArray:
		return w.WriteStartArray()
	case StartConstructor:
		return w.WriteStartConstructor(stringValue(tok.Value))
	case PropertyName:
		return w.WritePropertyName(stringValue(tok.Value))
	case Comment:
		return w.WriteComment(stringValue(tok.Value))
	case Raw:
		return w.WriteRawValue(stringValue(tok.Value))
	case EndObject:
		return w.WriteEndObject()
	case EndArray:
		return w.WriteEndArray()
	case EndConstructor:
		return w.WriteEndConstructor()
	case Null:
		return w.WriteNull()
	case Undefined:
		return w.WriteUndefined()
	}
	if v, ok := tokenOf(tok.Value); !ok || v.Kind != tok.Kind {
		return w.syntaxErrorf("invalid payload %T for %v token", tok.Value, tok.Kind)
	}
	return w.WriteValue(tok.Value)
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// WriteToken copies the current token of r to w. If writeChildren is true
// and the current token starts a container, the rest of the container is
// copied as well. If r has not yet read a token, everything r produces is
// copied.
//
// If dateConstructorAsDate is true, a Date constructor is written as a single
// Date value. Comments are copied only if writeComments is true.
func (w *Writer) WriteToken(r Reader, writeChildren, dateConstructorAsDate, writeComments bool) error {
	initial := -1
	if k := r.Kind(); k != None {
		initial = r.Depth()
		if !k.IsStart() {
			initial++
		}
	}
	for {
		tok := r.Token()
		if dateConstructorAsDate && tok.Kind == StartConstructor && tok.Value == "Date" {
			if err := w.writeConstructorDate(r); err != nil {
				return err
			}
		} else if writeComments || tok.Kind != Comment {
			if err := w.Write(tok); err != nil {
				return err
			}
		}

		depth := r.Depth()
		if r.Kind().IsEnd() {
			depth--
		}
		if !writeChildren || initial-1 >= depth {
			return nil
		}
		if ok, err := r.Read(); err != nil {
			return err
		} else if !ok {
			if initial >= 0 || r.Depth() > 0 {
				return w.inputErrorf("unexpected end when reading token")
			}
			return nil
		}
	}
}

// writeConstructorDate consumes the arguments of a Date constructor from r
// and writes the resulting date.
func (w *Writer) writeConstructorDate(r Reader) error {
	var args []int64
	for {
		ok, err := r.Read()
		if err != nil {
			return err
		} else if !ok {
			return w.inputErrorf("unexpected end when reading date constructor")
		}
		switch r.Kind() {
		case EndConstructor:
			t, err := constructorDate(args)
			if err != nil {
				return w.syntaxErrorf("%v", err)
			}
			return w.WriteDate(t)
		case Integer:
			v, err := toInteger(r.Value(), 64)
			if err != nil {
				return w.syntaxErrorf("invalid date constructor argument %v", r.Value())
			}
			args = append(args, v)
		default:
			return w.syntaxErrorf("unexpected token when reading date constructor: expected Integer, got %v", r.Kind())
		}
	}
}

// fail puts w into the Error state with the given error, and returns err.
func (w *Writer) fail(err error) error {
	w.state = Error
	w.err = err
	return err
}

func (w *Writer) syntaxErrorf(msg string, args ...any) error {
	return &SyntaxError{
		Path:    w.Path(),
		State:   w.state.String(),
		Message: fmt.Sprintf(msg, args...),
	}
}

func (w *Writer) inputErrorf(msg string, args ...any) error {
	return &InputError{
		Path:    w.Path(),
		Message: fmt.Sprintf(msg, args...),
		err:     io.ErrUnexpectedEOF,
	}
}
