// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

// A TokenBuffer is an Emitter that records the tokens delivered to it.
// The formatting hooks are ignored, as is raw text written by WriteRaw;
// a raw value written by WriteRawValue is recorded as a Raw token.
//
// The zero value is ready for use.
type TokenBuffer struct {
	toks []Token
}

// EmitToken implements part of the Emitter interface.
func (b *TokenBuffer) EmitToken(tok Token) error { b.toks = append(b.toks, tok); return nil }

// WriteValueDelimiter implements part of the Emitter interface. It does nothing.
func (*TokenBuffer) WriteValueDelimiter() error { return nil }

// WriteIndent implements part of the Emitter interface. It does nothing.
func (*TokenBuffer) WriteIndent() error { return nil }

// WriteIndentSpace implements part of the Emitter interface. It does nothing.
func (*TokenBuffer) WriteIndentSpace() error { return nil }

// WriteRaw implements part of the Emitter interface. It does nothing.
func (*TokenBuffer) WriteRaw(string) error { return nil }

// Tokens returns the tokens recorded by b. The slice is shared with b until
// the next call to Reset.
func (b *TokenBuffer) Tokens() []Token { return b.toks }

// Len reports the number of tokens recorded by b.
func (b *TokenBuffer) Len() int { return len(b.toks) }

// Reset discards the tokens recorded by b.
func (b *TokenBuffer) Reset() { b.toks = nil }

// NewReader returns a Reader that replays the tokens recorded by b.
func (b *TokenBuffer) NewReader(opts *ReaderOptions) *BufferReader {
	return NewBufferReader(b.toks, opts)
}

// A BufferReader is a Reader that replays a sequence of tokens. The tokens
// are checked against the same grammar a Writer enforces.
type BufferReader struct {
	reader

	toks []Token
	i    int // index of the next unread token
}

// NewBufferReader constructs a BufferReader over toks.
// If opts == nil, default options are used.
func NewBufferReader(toks []Token, opts *ReaderOptions) *BufferReader {
	b := &BufferReader{toks: toks}
	b.opts = opts
	b.next = b.readToken
	return b
}

// Close releases the tokens held by b.
func (b *BufferReader) Close() error {
	b.state = Closed
	b.tok, b.val = None, nil
	b.toks = nil
	return nil
}

func (b *BufferReader) readToken(readType) (bool, error) {
	for {
		switch b.state {
		case Error:
			return false, b.err
		case Closed:
			return false, nil
		}
		if b.i >= len(b.toks) {
			b.tok, b.val = None, nil
			return false, nil
		}
		tok := b.toks[b.i]
		b.i++
		if tok.Kind == Comment && b.opts.discardComments() {
			continue
		}

		val, ok := checkPayload(tok)
		if !ok {
			return false, b.fail(b.syntaxErrorf("invalid payload %T for %v token", tok.Value, tok.Kind))
		}

		switch b.state {
		case PostValue:
			b.setStateFromContainer()
		case Finished:
			// Comments may follow the end of the input value.
			if tok.Kind == Comment {
				b.tok, b.val = Comment, val
				return true, nil
			}
			return false, b.fail(b.syntaxErrorf("unexpected token %v after the end of the input value", tok.Kind))
		}
		if tok.Kind.IsEnd() {
			if b.state == Property {
				return false, b.fail(b.syntaxErrorf("unexpected token %v after property name", tok.Kind))
			}
		} else if tok.Kind == None || transitions[classOf(tok.Kind)][b.state] == Error {
			return false, b.fail(b.syntaxErrorf("unexpected token %v in state %v", tok.Kind, b.state))
		}
		return true, b.setToken(tok.Kind, val, true)
	}
}

// checkPayload reports whether the value of tok has the type its kind
// requires, and returns the value in its canonical form.
func checkPayload(tok Token) (any, bool) {
	switch tok.Kind {
	case StartObject, StartArray, EndObject, EndArray, EndConstructor, Null, Undefined:
		return nil, true
	case PropertyName, Comment, Raw, StartConstructor:
		s, ok := tok.Value.(string)
		return s, ok
	case Integer, Float, String, Boolean, Date, Bytes:
		v, ok := tokenOf(tok.Value)
		return v.Value, ok && v.Kind == tok.Kind
	}
	return nil, tok.Kind == None
}
