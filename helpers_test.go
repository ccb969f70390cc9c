// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken_test

import (
	"strings"
	"testing"

	"github.com/creachadair/jtoken"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// tk is shorthand for a token literal.
func tk(kind jtoken.Kind, val any) jtoken.Token { return jtoken.Token{Kind: kind, Value: val} }

// readAll reads all the tokens from r, stopping at the first error.
func readAll(r jtoken.Reader) ([]jtoken.Token, error) {
	var out []jtoken.Token
	for {
		ok, err := r.Read()
		if err != nil {
			return out, err
		} else if !ok {
			return out, nil
		}
		out = append(out, r.Token())
	}
}

func mustReadAll(t *testing.T, input string, opts *jtoken.ReaderOptions) []jtoken.Token {
	t.Helper()
	got, err := readAll(jtoken.NewTextReader(strings.NewReader(input), opts))
	if err != nil {
		t.Fatalf("Reading %#q: unexpected error: %v", input, err)
	}
	return got
}

var tokenOpts = cmp.Options{cmpopts.EquateNaNs(), cmpopts.EquateEmpty()}

func diffTokens(want, got []jtoken.Token) string { return cmp.Diff(want, got, tokenOpts) }

func diffStrings(want, got string) string {
	return cmp.Diff(strings.Split(strings.TrimSpace(want), "\n"),
		strings.Split(strings.TrimSpace(got), "\n"))
}
