// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"io"
)

// A TextReader is a Reader that scans tokens from JSON text.
//
// In addition to standard JSON, a TextReader accepts:
//
//   - strings and property names delimited by single quotes
//   - unquoted property names consisting of letters, digits, "_" and "$"
//   - line (// ...) and block (/* ... */) comments
//   - hexadecimal (0x1F) and octal (017) integers
//   - the symbols NaN, Infinity, -Infinity, and undefined
//   - constructors, new Name(arg, ...), reported as StartConstructor and
//     EndConstructor tokens enclosing the arguments
//   - an empty element before a comma, reported as Undefined
type TextReader struct {
	reader

	in    io.Reader
	buf   *scanBuffer
	names *NameTable
	strs  arena
	sbuf  []byte // decoded text of the current string, if it has escapes

	loc Location // of the current token
}

// NewTextReader constructs a TextReader that consumes input from r.
// If opts == nil, default options are used.
func NewTextReader(r io.Reader, opts *ReaderOptions) *TextReader {
	t := &TextReader{
		in:    r,
		buf:   newScanBuffer(r, opts.bufferSize()),
		names: opts.nameTable(),
	}
	t.opts = opts
	t.next = t.readToken
	t.where = t.lineCol
	return t
}

// Location returns the location of the current token in the input.
func (t *TextReader) Location() Location { return t.loc }

// Close releases the resources held by t. If the CloseInput option is set
// and the input implements io.Closer, the input is also closed.
func (t *TextReader) Close() error {
	if t.state == Closed {
		return nil
	}
	t.state = Closed
	t.tok, t.val = None, nil
	t.buf.release()
	if t.opts.closeInput() {
		if c, ok := t.in.(io.Closer); ok {
			return c.Close()
		}
	}
	return nil
}

func (t *TextReader) lineCol() LineCol { return t.buf.lineCol(t.buf.offset()) }

// readToken advances t to the next token, as requested by rt.
func (t *TextReader) readToken(rt readType) (bool, error) {
	for {
		var ok bool
		var err error
		switch t.state {
		case Error:
			return false, t.err
		case Closed:
			return false, nil
		case Start, Property, ArrayStart, ArrayState, ConstructorStart, ConstructorState:
			ok, err = t.parseValue(rt)
		case ObjectStart, ObjectState:
			ok, err = t.parseObject()
		case PostValue:
			var again bool
			ok, again, err = t.parsePostValue()
			if again {
				continue
			}
		case Finished:
			ok, err = t.parseFinished()
		default:
			return false, t.fail(t.syntaxErrorf("invalid reader state %v", t.state))
		}

		if err != nil {
			return ok, err
		} else if !ok {
			t.tok, t.val = None, nil
			return false, nil
		} else if t.tok == Comment && t.opts.discardComments() {
			continue
		}
		return true, nil
	}
}

// parseValue reads a value, a container start or end, or a comment.
func (t *TextReader) parseValue(rt readType) (bool, error) {
	c, ok := t.skipSpace()
	if !ok {
		return false, t.readErr()
	}
	t.begin()

	switch c {
	case '"', '\'':
		return true, t.readString(c, rt)
	case 't':
		return true, t.readLiteral("true", Boolean, true)
	case 'f':
		return true, t.readLiteral("false", Boolean, false)
	case 'n':
		next, ok := t.buf.peekAt(1)
		if !ok {
			return false, t.eofError("parsing value")
		} else if next == 'e' {
			return true, t.readConstructor()
		}
		return true, t.readLiteral("null", Null, nil)
	case 'u':
		return true, t.readLiteral("undefined", Undefined, nil)
	case 'N':
		return true, t.readSymbol("NaN", rt)
	case 'I':
		return true, t.readSymbol("Infinity", rt)
	case '-':
		if next, ok := t.buf.peekAt(1); ok && next == 'I' {
			return true, t.readSymbol("-Infinity", rt)
		}
		return true, t.readNumber(rt)
	case '/':
		return true, t.readComment()
	case '{':
		return true, t.readDelim(StartObject)
	case '[':
		return true, t.readDelim(StartArray)
	case ']':
		return true, t.readDelim(EndArray)
	case ')':
		return true, t.readDelim(EndConstructor)
	case ',':
		// An empty element. The comma is consumed as the delimiter after it.
		t.end()
		return true, t.setToken(Undefined, nil, true)
	}
	if isDigit(c) || c == '.' {
		return true, t.readNumber(rt)
	}
	return false, t.fail(t.syntaxErrorf("unexpected character %q while parsing value", c))
}

// parseObject reads a property name, the end of an object, or a comment.
func (t *TextReader) parseObject() (bool, error) {
	c, ok := t.skipSpace()
	if !ok {
		return false, t.readErr()
	}
	t.begin()

	switch c {
	case '}':
		return true, t.readDelim(EndObject)
	case '/':
		return true, t.readComment()
	}
	return true, t.readPropertyName(c)
}

// parsePostValue reads what follows a complete value: a delimiter, the end
// of the enclosing container, or a comment. It reports again == true if the
// state changed without producing a token.
func (t *TextReader) parsePostValue() (ok, again bool, err error) {
	c, ok := t.skipSpace()
	if !ok {
		if err := t.readErr(); err != nil {
			return false, false, err
		}
		t.state = Finished
		return false, true, nil
	}
	t.begin()

	switch c {
	case '}':
		return true, false, t.readDelim(EndObject)
	case ']':
		return true, false, t.readDelim(EndArray)
	case ')':
		return true, false, t.readDelim(EndConstructor)
	case '/':
		return true, false, t.readComment()
	case ',':
		t.buf.pos++
		t.setStateFromContainer()
		return false, true, nil
	}
	if t.pos.peek() == NoContainer && t.opts.multipleContent() {
		t.setFinished()
		return false, true, nil
	}
	return false, false, t.fail(t.syntaxErrorf("unexpected character %q after value", c))
}

// parseFinished reads what follows a complete top-level value. Only
// comments and whitespace are allowed.
func (t *TextReader) parseFinished() (bool, error) {
	c, ok := t.skipSpace()
	if !ok {
		return false, t.readErr()
	}
	t.begin()
	if c == '/' {
		return true, t.readComment()
	}
	return false, t.fail(t.syntaxErrorf("additional text %q after the end of the input value", c))
}

// begin marks the start of a token at the current position.
func (t *TextReader) begin() {
	t.buf.begin()
	t.loc.Pos = t.buf.offset()
	t.loc.First = t.buf.lineCol(t.loc.Pos)
}

// end marks the end of the current token at the current position.
func (t *TextReader) end() {
	t.loc.End = t.buf.offset()
	t.loc.Last = t.buf.lineCol(t.loc.End)
}

// readErr reports an error if the input ended because of a read error.
// At a clean end of input it returns nil.
func (t *TextReader) readErr() error {
	if t.buf.err != nil {
		return t.fail(t.inputErrorf(t.buf.err, "reading input: %v", t.buf.err))
	}
	return nil
}

// eofError reports that the input ended in the middle of a token.
func (t *TextReader) eofError(what string) error {
	if err := t.readErr(); err != nil {
		return err
	}
	return t.fail(t.inputErrorf(io.ErrUnexpectedEOF, "unexpected end of input while %s", what))
}
