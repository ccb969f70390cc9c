// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"errors"
	"strings"

	"github.com/creachadair/jtoken/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return QuoteWith(src, '"') }

// QuoteWith encodes src as a string value delimited by delim, which must be
// either '"' or '\''.
func QuoteWith(src string, delim byte) string {
	buf := make([]byte, 0, len(src)+2)
	buf = append(buf, delim)
	buf = escape.AppendQuote(buf, mem.S(src), delim)
	return string(append(buf, delim))
}

// Unquote decodes a string value. Quotation marks, which may be either
// single or double, are removed and escape sequences are replaced with their
// unescaped equivalents.
//
// Unpaired surrogates are replaced by the Unicode replacement rune. Unquote
// reports an error for an invalid or incomplete escape sequence, or if src
// contains anything other than a single string value.
func Unquote(src string) (string, error) {
	if len(src) < 2 || (src[0] != '"' && src[0] != '\'') || src[len(src)-1] != src[0] {
		return "", errors.New("missing quotations")
	}
	r := NewTextReader(strings.NewReader(src), nil)
	defer r.Close()

	if ok, err := r.Read(); err != nil {
		return "", err
	} else if !ok || r.Kind() != String {
		return "", errors.New("input is not a string")
	}
	s := r.Value().(string)
	if ok, err := r.Read(); err != nil {
		return "", err
	} else if ok {
		return "", errors.New("extra input after string")
	}
	return s, nil
}
