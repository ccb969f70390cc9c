// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// Quote encodes a string to escape characters for inclusion in a string
// literal delimited by delim, which should be '"' or '\''. The delimiters
// themselves are not added.
func Quote(src mem.RO, delim byte) []byte {
	return AppendQuote(make([]byte, 0, src.Len()), src, delim)
}

// AppendQuote appends the escaped encoding of src to buf, as Quote, and
// returns the updated slice.
func AppendQuote(buf []byte, src mem.RO, delim byte) []byte {
	putByte := func(bs ...byte) { buf = append(buf, bs...) }

	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		if r < utf8.RuneSelf {
			if r < ' ' {
				if b := controlEsc[r]; b != 0 && b != ' ' {
					putByte('\\', b)
				} else {
					putByte('\\', 'u', '0', '0', hexDigit[int(r>>4)], hexDigit[int(r&15)])
				}
			} else if r == '\\' || byte(r) == delim {
				putByte('\\', byte(r))
			} else {
				putByte(byte(r))
			}
			src = src.SliceFrom(n)
			continue
		}

		switch {
		case r == utf8.RuneError: // replacement rune, or an invalid encoding
			buf = append(buf, `\ufffd`...)
		case r == '\u0085': // next line
			buf = append(buf, `\u0085`...)
		case r == '\u2028': // line separator
			buf = append(buf, `\u2028`...)
		case r == '\u2029': // paragraph separator
			buf = append(buf, `\u2029`...)
		default:
			buf = utf8.AppendRune(buf, r)
		}
		src = src.SliceFrom(n)
	}
	return buf
}
