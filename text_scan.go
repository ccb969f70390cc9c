// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"errors"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/creachadair/jtoken/internal/escape"
	"github.com/shopspring/decimal"
	"go4.org/mem"
)

// skipSpace consumes whitespace and returns the next byte of input without
// consuming it. It reports false if the input is exhausted.
func (t *TextReader) skipSpace() (byte, bool) {
	b := t.buf
	for {
		c, ok := b.peek()
		if !ok {
			return 0, false
		}
		switch c {
		case '\n':
			b.pos++
			b.newLine()
		case '\r':
			t.skipCR()
		case ' ', '\t', '\f', '\v':
			b.pos++
		case 0xEF:
			// A UTF-8 byte order mark is permitted at the start of the input.
			if b.offset() != 0 || !t.hasPrefix("\xef\xbb\xbf") {
				return c, true
			}
			b.pos += 3
		default:
			return c, true
		}
	}
}

// skipCR consumes a carriage return at pos and the line feed that follows
// it, if any, and records the line break.
func (t *TextReader) skipCR() {
	b := t.buf
	b.pos++
	if c, ok := b.peek(); ok && c == '\n' {
		b.pos++
	}
	b.newLine()
}

// hasPrefix reports whether the unscanned input begins with s.
func (t *TextReader) hasPrefix(s string) bool {
	if !t.buf.avail(len(s)) {
		return false
	}
	return mem.HasPrefix(mem.B(t.buf.data[t.buf.pos:t.buf.end]), mem.S(s))
}

// atSeparator reports whether the input at pos may follow a literal: the
// end of input, whitespace, a delimiter, or the start of a comment.
// A close parenthesis is a separator only inside a constructor.
func (t *TextReader) atSeparator() bool {
	c, ok := t.buf.peek()
	if !ok {
		return true
	}
	switch c {
	case '}', ']', ',':
		return true
	case '/':
		next, ok := t.buf.peekAt(1)
		return ok && (next == '*' || next == '/')
	case ')':
		return t.state == ConstructorStart || t.state == ConstructorState
	}
	return isSpace(c)
}

// readDelim consumes a single-byte delimiter and sets a token of the given
// kind.
func (t *TextReader) readDelim(kind Kind) error {
	t.buf.pos++
	t.end()
	return t.setToken(kind, nil, true)
}

// matchLiteral consumes word, which must be followed by a separator.
func (t *TextReader) matchLiteral(word string) error {
	b := t.buf
	for i := 0; i < len(word); i++ {
		c, ok := b.peekAt(i)
		if !ok {
			return t.eofError("parsing " + strconv.Quote(word))
		} else if c != word[i] {
			return t.fail(t.syntaxErrorf("invalid literal, expected %q", word))
		}
	}
	b.pos += len(word)
	if !t.atSeparator() {
		c, _ := b.peek()
		return t.fail(t.syntaxErrorf("unexpected character %q after %q", c, word))
	}
	return nil
}

// readLiteral consumes a keyword and sets a token of the given kind.
func (t *TextReader) readLiteral(word string, kind Kind, val any) error {
	if err := t.matchLiteral(word); err != nil {
		return err
	}
	t.end()
	return t.setToken(kind, val, true)
}

var symbolValue = map[string]float64{
	"NaN":       math.NaN(),
	"Infinity":  math.Inf(1),
	"-Infinity": math.Inf(-1),
}

// readSymbol consumes one of the non-finite number symbols. A symbol is read
// as a string if rt requests one, and otherwise as a Float, provided floats
// are parsed as float64.
func (t *TextReader) readSymbol(word string, rt readType) error {
	if err := t.matchLiteral(word); err != nil {
		return err
	}
	t.end()
	switch rt {
	case readAsString:
		return t.setToken(String, word, true)
	case readAny, readAsDouble:
		if t.opts.floatParse() == FloatParseDouble {
			return t.setToken(Float, symbolValue[word], true)
		}
	}
	return t.fail(t.syntaxErrorf("cannot read %s value", word))
}

// readString consumes a quoted string. Date-shaped strings are reported as
// dates when enabled by the reader options.
func (t *TextReader) readString(quote byte, rt readType) error {
	text, err := t.scanString(quote)
	if err != nil {
		return err
	}
	t.end()
	s := t.strs.String(text)
	if rt == readAny && t.opts.dateParse() == DateParseDateTime {
		if d, ok := detectDate(s, t.opts.timeZone()); ok {
			return t.setToken(Date, d, true)
		}
	}
	return t.setToken(String, s, true)
}

// scanString consumes a string delimited by quote, beginning at pos, and
// returns its decoded contents. If the string contains no escapes, the
// result is a view of the scan buffer; otherwise it is a view of sbuf.
// Either way it is valid only until the next read from the input.
func (t *TextReader) scanString(quote byte) ([]byte, error) {
	b := t.buf
	b.pos++
	run := b.pos - b.mark // start of the current unescaped run, relative to mark
	escaped := false
	t.sbuf = t.sbuf[:0]

	for {
		for b.pos < b.end {
			c := b.data[b.pos]
			if c == quote || c == '\\' || c == '\r' || c == '\n' {
				break
			}
			b.pos++
		}
		c, ok := b.peek()
		if !ok {
			return nil, t.eofError("parsing string")
		}
		switch c {
		case quote:
			seg := b.data[b.mark+run : b.pos]
			b.pos++
			if !escaped {
				return seg, nil
			}
			t.sbuf = append(t.sbuf, seg...)
			return t.sbuf, nil

		case '\\':
			t.sbuf = append(t.sbuf, b.data[b.mark+run:b.pos]...)
			escaped = true
			b.pos++
			if err := t.scanEscape(); err != nil {
				return nil, err
			}
			run = b.pos - b.mark

		case '\n':
			b.pos++
			b.newLine()

		case '\r':
			t.skipCR()
		}
	}
}

// scanEscape decodes the escape sequence following a backslash and appends
// its value to sbuf. An unpaired surrogate is decoded as U+FFFD.
func (t *TextReader) scanEscape() error {
	b := t.buf
	c, ok := b.peek()
	if !ok {
		return t.eofError("parsing string escape")
	}
	b.pos++
	if c != 'u' {
		d, ok := escape.Simple(c)
		if !ok {
			return t.fail(t.syntaxErrorf("invalid escape sequence \\%c", c))
		}
		t.sbuf = append(t.sbuf, d)
		return nil
	}

	r, err := t.scanHex4()
	if err != nil {
		return err
	}
	for escape.IsHighSurrogate(r) {
		if !t.hasPrefix(`\u`) {
			r = utf8.RuneError
			break
		}
		b.pos += 2
		lo, err := t.scanHex4()
		if err != nil {
			return err
		}
		if escape.IsLowSurrogate(lo) {
			t.sbuf = escape.AppendPair(t.sbuf, r, lo)
			return nil
		}
		t.sbuf = utf8.AppendRune(t.sbuf, utf8.RuneError)
		r = lo
	}
	if escape.IsLowSurrogate(r) {
		r = utf8.RuneError
	}
	t.sbuf = utf8.AppendRune(t.sbuf, r)
	return nil
}

func (t *TextReader) scanHex4() (rune, error) {
	b := t.buf
	if !b.avail(4) {
		return 0, t.eofError("parsing Unicode escape")
	}
	r, err := escape.ParseHex4(mem.B(b.data[b.pos : b.pos+4]))
	if err != nil {
		return 0, t.fail(t.syntaxErrorf("invalid Unicode escape: %v", err))
	}
	b.pos += 4
	return r, nil
}

// readComment consumes a comment and sets a Comment token carrying its text
// without delimiters.
func (t *TextReader) readComment() error {
	text, err := t.scanComment()
	if err != nil {
		return err
	}
	t.end()
	if t.opts.discardComments() {
		t.tok, t.val = Comment, nil
		return nil
	}
	return t.setToken(Comment, t.strs.String(text), true)
}

// scanComment consumes a comment beginning at pos and returns its text. The
// result is valid only until the next read from the input.
func (t *TextReader) scanComment() ([]byte, error) {
	b := t.buf
	c, ok := b.peekAt(1)
	if !ok {
		return nil, t.eofError("parsing comment")
	}
	b.pos += 2
	start := b.pos - b.mark

	switch c {
	case '*': // block comment
		for {
			c, ok := b.peek()
			if !ok {
				return nil, t.eofError("parsing comment")
			}
			switch c {
			case '*':
				if next, ok := b.peekAt(1); ok && next == '/' {
					text := b.data[b.mark+start : b.pos]
					b.pos += 2
					return text, nil
				}
				b.pos++
			case '\n':
				b.pos++
				b.newLine()
			case '\r':
				t.skipCR()
			default:
				b.pos++
			}
		}

	case '/': // line comment, not including the line break
		for {
			c, ok := b.peek()
			if !ok || c == '\r' || c == '\n' {
				return b.data[b.mark+start : b.pos], nil
			}
			b.pos++
		}
	}
	b.pos--
	return nil, t.fail(t.syntaxErrorf("invalid comment: expected '*' or '/' after '/', got %q", c))
}

// readPropertyName consumes a property name and the colon following it.
func (t *TextReader) readPropertyName(first byte) error {
	b := t.buf
	var name string
	switch {
	case first == '"' || first == '\'':
		text, err := t.scanString(first)
		if err != nil {
			return err
		}
		name = t.intern(text)

	case isIdentByte(first):
		for {
			c, ok := b.peek()
			if !ok || !isIdentByte(c) {
				break
			}
			b.pos++
		}
		name = t.intern(b.token())

	default:
		return t.fail(t.syntaxErrorf("invalid property identifier character %q", first))
	}
	t.end()

	c, ok := t.skipSpace()
	if !ok {
		return t.eofError("parsing property name")
	} else if c != ':' {
		return t.fail(t.syntaxErrorf("invalid character after property name: expected ':', got %q", c))
	}
	b.pos++
	return t.setToken(PropertyName, name, true)
}

// intern returns a string with the contents of text, shared through the name
// table if one is configured.
func (t *TextReader) intern(text []byte) string {
	if t.names != nil {
		return t.names.Intern(text)
	}
	return t.strs.String(text)
}

// readConstructor consumes the start of a constructor, "new Name(", and sets
// a StartConstructor token carrying the name.
func (t *TextReader) readConstructor() error {
	if err := t.matchLiteral("new"); err != nil {
		return err
	}
	b := t.buf
	if _, ok := t.skipSpace(); !ok {
		return t.eofError("parsing constructor")
	}
	start := b.pos - b.mark
	for {
		c, ok := b.peek()
		if !ok || !isIdentByte(c) {
			break
		}
		b.pos++
	}
	if b.pos-b.mark == start {
		c, _ := b.peek()
		return t.fail(t.syntaxErrorf("unexpected character %q while parsing constructor name", c))
	}
	name := t.strs.String(b.data[b.mark+start : b.pos])

	c, ok := t.skipSpace()
	if !ok {
		return t.eofError("parsing constructor")
	} else if c != '(' {
		return t.fail(t.syntaxErrorf("unexpected character %q while parsing constructor", c))
	}
	b.pos++
	t.end()
	return t.setToken(StartConstructor, name, true)
}

// readNumber consumes a number and sets a token for it, interpreted as
// requested by rt.
func (t *TextReader) readNumber(rt readType) error {
	b := t.buf
	first := b.data[b.pos]
	for {
		c, ok := b.peek()
		if !ok || !isNumberByte(c) {
			break
		}
		b.pos++
	}
	if c, ok := b.peek(); ok && !isNumberEnd(c) {
		return t.fail(t.syntaxErrorf("unexpected character %q while parsing number", c))
	} else if !ok {
		if err := t.readErr(); err != nil {
			return err
		}
	}
	t.end()
	return t.parseNumber(b.token(), first, rt)
}

// parseNumber interprets text as a number of the type requested by rt, and
// sets the corresponding token.
//
// A number with a leading zero followed by anything other than a decimal
// point or exponent is an integer in hexadecimal (0x...) or octal notation.
//
// If text is a valid number but cannot be converted as rt requests, the
// token is set as for an ordinary read and a *ConversionError is returned.
// If text is not a valid number at all, the reader fails.
func (t *TextReader) parseNumber(text []byte, first byte, rt readType) error {
	m := mem.B(text)
	single := isDigit(first) && len(text) == 1
	nonBase10 := first == '0' && len(text) > 1 &&
		text[1] != '.' && text[1] != 'e' && text[1] != 'E'

	switch rt {
	case readAsString:
		var err error
		if nonBase10 {
			_, err = parseNonBase10(m, 64)
		} else {
			_, err = mem.ParseFloat(m, 64)
		}
		if err != nil {
			return t.fail(t.conversionError(string(text), "number", unwrapNumError(err)))
		}
		return t.setToken(String, t.strs.String(text), true)

	case readAsInt32, readAsInt64:
		bits := 64
		if rt == readAsInt32 {
			bits = 32
		}
		var v int64
		var err error
		switch {
		case single:
			v = int64(first - '0')
		case nonBase10:
			var u uint64
			u, err = parseNonBase10(m, bits)
			v = signExtend(u, bits)
		default:
			v, err = mem.ParseInt(m, 10, bits)
		}
		if err != nil {
			return t.numberConversionError(text, first, "int"+strconv.Itoa(bits), err)
		}
		return t.setToken(Integer, integerValue(v, bits), true)

	case readAsDecimal:
		var d decimal.Decimal
		var err error
		switch {
		case single:
			d = decimal.NewFromInt(int64(first - '0'))
		case nonBase10:
			var u uint64
			u, err = parseNonBase10(m, 64)
			d = decimal.NewFromInt(int64(u))
		default:
			d, err = decimal.NewFromString(string(text))
		}
		if err != nil {
			return t.numberConversionError(text, first, "decimal", err)
		}
		return t.setToken(Float, d, true)

	case readAsDouble:
		var f float64
		var err error
		switch {
		case single:
			f = float64(first - '0')
		case nonBase10:
			var u uint64
			u, err = parseNonBase10(m, 64)
			f = float64(int64(u))
		default:
			f, err = mem.ParseFloat(m, 64)
		}
		if err != nil {
			return t.numberConversionError(text, first, "float64", err)
		}
		return t.setToken(Float, f, true)
	}

	switch {
	case single:
		return t.setToken(Integer, int64(first-'0'), true)
	case nonBase10:
		u, err := parseNonBase10(m, 64)
		if err != nil {
			return t.fail(t.conversionError(string(text), "number", unwrapNumError(err)))
		}
		return t.setToken(Integer, int64(u), true)
	}
	v, err := mem.ParseInt(m, 10, 64)
	if err == nil {
		return t.setToken(Integer, v, true)
	} else if errors.Is(err, strconv.ErrRange) {
		return t.fail(t.conversionError(string(text), "int64", strconv.ErrRange))
	}
	if t.opts.floatParse() == FloatParseDecimal {
		d, err := decimal.NewFromString(string(text))
		if err != nil {
			return t.fail(t.conversionError(string(text), "decimal", strconv.ErrSyntax))
		}
		return t.setToken(Float, d, true)
	}
	f, err := mem.ParseFloat(m, 64)
	if err != nil {
		return t.fail(t.conversionError(string(text), "number", unwrapNumError(err)))
	}
	return t.setToken(Float, f, true)
}

// numberConversionError sets the token for text as an ordinary read would,
// and returns a conversion error for the requested target. If text is not
// a valid number at all, the reader fails instead.
func (t *TextReader) numberConversionError(text []byte, first byte, target string, err error) error {
	cause := unwrapNumError(err)
	if !errors.Is(cause, strconv.ErrRange) {
		cause = strconv.ErrSyntax
	}
	s := string(text)
	if err := t.parseNumber(text, first, readAny); err != nil {
		return err
	}
	return t.conversionError(s, target, cause)
}

// parseNonBase10 parses a hexadecimal (0x...) or octal integer as an
// unsigned value of the given bit size.
func parseNonBase10(m mem.RO, bits int) (uint64, error) {
	if m.Len() > 1 && (m.At(1) == 'x' || m.At(1) == 'X') {
		return mem.ParseUint(m.SliceFrom(2), 16, bits)
	}
	return mem.ParseUint(m, 8, bits)
}

// signExtend interprets the low-order bits of u as a two's-complement signed
// value.
func signExtend(u uint64, bits int) int64 {
	if bits == 32 {
		return int64(int32(uint32(u)))
	}
	return int64(u)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentByte(c byte) bool {
	return isDigit(c) || c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// isNumberByte reports whether c may occur in the text of a number. This is
// deliberately permissive; the text is validated when it is parsed.
func isNumberByte(c byte) bool {
	switch {
	case isDigit(c), 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		return true
	}
	return c == '-' || c == '+' || c == '.' || c == 'x' || c == 'X'
}

// isNumberEnd reports whether c may follow the text of a number.
func isNumberEnd(c byte) bool {
	switch c {
	case ',', '}', ']', ')', '/':
		return true
	}
	return isSpace(c)
}
