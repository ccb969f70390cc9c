// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting of JSON strings and decoding of the escape
// sequences that may occur inside them.
package escape

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Simple returns the character denoted by the single-character escape \c,
// and reports whether c is a valid single-character escape. The \u escape is
// not handled by Simple; see ParseHex4.
func Simple(c byte) (byte, bool) {
	switch c {
	case '"', '\'', '\\', '/':
		return c, true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	}
	return 0, false
}

// ParseHex4 decodes exactly four hexadecimal digits from the front of data as
// a UTF-16 code unit. It reports an error if data is too short or contains a
// non-hex digit.
func ParseHex4(data mem.RO) (rune, error) {
	if data.Len() < 4 {
		return 0, fmt.Errorf("incomplete Unicode escape %q", data.StringCopy())
	}
	var v rune
	for i := 0; i < 4; i++ {
		b := data.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += rune(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += rune(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += rune(b - 'A' + 10)
		} else {
			return 0, fmt.Errorf("invalid hex digit %q", b)
		}
	}
	return v, nil
}

// IsHighSurrogate reports whether r is the first half of a UTF-16 surrogate
// pair.
func IsHighSurrogate(r rune) bool { return r >= 0xd800 && r < 0xdc00 }

// IsLowSurrogate reports whether r is the second half of a UTF-16 surrogate
// pair.
func IsLowSurrogate(r rune) bool { return r >= 0xdc00 && r < 0xe000 }

// AppendPair appends the UTF-8 encoding of the surrogate pair hi, lo to buf.
func AppendPair(buf []byte, hi, lo rune) []byte {
	return utf8.AppendRune(buf, utf16.DecodeRune(hi, lo))
}
