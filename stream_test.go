// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/creachadair/jtoken"
)

func newStream(input string, opts *jtoken.ReaderOptions) *jtoken.Stream {
	return jtoken.NewStream(jtoken.NewTextReader(strings.NewReader(input), opts))
}

func TestStream(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "."},
		{"   ", "."},

		{"true false null", `
Value Boolean(true)
Value Boolean(false)
Value Null
.`},

		{`0 5 -6.32 0.1e-2`, `
Value Integer(0)
Value Integer(5)
Value Float(-6.32)
Value Float(0.001)
.`},

		{`"" "a b c" "a\u0021b" 'a b'`, `
Value String()
Value String(a b c)
Value String(a!b)
Value String(a b)
.`},

		{`{}`, "BeginObject\nEndObject\n."},

		{`{"a":15}`, `
BeginObject
BeginMember a
Value Integer(15) @ a
EndMember a
EndObject
.`},

		{`{"x":null, "y":[true]}`, `
BeginObject
BeginMember x
Value Null @ x
EndMember x
BeginMember y
BeginArray @ y
Value Boolean(true) @ y[0]
EndArray @ y
EndMember y
EndObject
.`},

		{`[]`, "BeginArray\nEndArray\n."},

		{`new Point(1, 2)`, `
BeginConstructor Point
Value Integer(1) @ [0]
Value Integer(2) @ [1]
EndConstructor
.`},

		{`[1, /*two*/ 2] //end`, `
BeginArray
Value Integer(1) @ [0]
Comment two
Value Integer(2) @ [1]
EndArray
Comment end
.`},
	}

	for _, test := range tests {
		st := newStream(test.input, multi)
		th := new(testHandler)
		if err := st.Parse(th); err != nil {
			t.Errorf("Parse failed: %v", err)
		}

		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestStreamErrors(t *testing.T) {
	var (
		syntax *jtoken.SyntaxError
		input  *jtoken.InputError
	)
	tests := []struct {
		input  string
		want   string
		target any
	}{
		// Various kinds of unbalanced object bits.
		{`{`, `BeginObject`, &input},
		{`}`, ``, &syntax},
		{`{"a":1`, `
BeginObject
BeginMember a
Value Integer(1) @ a
EndMember a`, &input},
		{`{"true":}`, `
BeginObject
BeginMember true`, &syntax},
		{`{"true":1,`, `
BeginObject
BeginMember true
Value Integer(1) @ true
EndMember true`, &input},

		// Unbalanced array bits.
		{`[`, `BeginArray`, &input},
		{`]`, ``, &syntax},
		{`[15,`, `
BeginArray
Value Integer(15) @ [0]`, &input},
		{`[15}`, `
BeginArray
Value Integer(15) @ [0]`, &syntax},

		// Invalid values.
		{`1 2.0 forthright`, `
Value Integer(1)
Value Float(2)`, &syntax},
		{`"what did you`, ``, &input},
	}

	for _, test := range tests {
		st := newStream(test.input, multi)
		th := new(testHandler)
		err := st.Parse(th)
		if err == nil {
			t.Errorf("Input: %#q: Parse did not report an error", test.input)
			continue
		}

		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
		if !errors.As(err, test.target) {
			t.Errorf("Input: %#q: got error %[2]T (%[2]v), want %T", test.input, err, test.target)
		}
	}
}

func TestStreamHandlerError(t *testing.T) {
	stop := errors.New("stop here")
	th := &testHandler{failOn: "EndArray", err: stop}
	err := newStream(`[1, [2], 3]`, nil).Parse(th)
	if !errors.Is(err, stop) {
		t.Errorf("Parse: got error %v, want %v", err, stop)
	}
	const want = `
BeginArray
Value Integer(1) @ [0]
BeginArray @ [1]
Value Integer(2) @ [1][0]
EndArray @ [1]`
	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestStreamBufferReader(t *testing.T) {
	var buf jtoken.TokenBuffer
	w := jtoken.NewWriter(&buf, nil)
	w.WriteStartObject()
	w.WritePropertyName("k")
	w.WriteStartArray()
	w.WriteString("v")
	w.Close()

	th := new(testHandler)
	if err := jtoken.NewStream(buf.NewReader(nil)).Parse(th); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	const want = `
BeginObject
BeginMember k
BeginArray @ k
Value String(v) @ k[0]
EndArray @ k
EndMember k
EndObject
.`
	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestParseOne(t *testing.T) {
	const input = `{ "love": true } [] "ok"`
	const want = `
BeginObject
BeginMember love
Value Boolean(true) @ love
EndMember love
EndObject
---
BeginArray
EndArray
---
Value String(ok)
---
.`
	th := new(testHandler)

	st := newStream(input, multi)
	for {
		err := st.ParseOne(th)
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("ParseOne failed: %v", err)
		}
		th.pr("---")
	}

	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", input, diff)
	}
}

func TestAnchorLocation(t *testing.T) {
	var got []jtoken.Location
	h := &locHandler{locs: &got}
	if err := newStream("[1,\n  22]", nil).Parse(h); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Got %d locations, want 2", len(got))
	}
	if s := got[1].String(); s != "2:2-4" {
		t.Errorf("Location of second value: got %q, want %q", s, "2:2-4")
	}
}

type testHandler struct {
	buf    bytes.Buffer
	failOn string
	err    error
}

func (t *testHandler) pr(msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(&t.buf, msg, args...)
}

func (t *testHandler) output() string { return t.buf.String() }

// event logs the named event with the path of loc, if it has one, and
// reports t.err if name is the event t should fail on.
func (t *testHandler) event(name string, loc jtoken.Anchor) error {
	if p := loc.Path(); p != "" {
		t.pr("%s @ %s", name, p)
	} else {
		t.pr("%s", name)
	}
	if name == t.failOn {
		return t.err
	}
	return nil
}

func (t *testHandler) BeginObject(loc jtoken.Anchor) error { return t.event("BeginObject", loc) }
func (t *testHandler) EndObject(loc jtoken.Anchor) error   { return t.event("EndObject", loc) }
func (t *testHandler) BeginArray(loc jtoken.Anchor) error  { return t.event("BeginArray", loc) }
func (t *testHandler) EndArray(loc jtoken.Anchor) error    { return t.event("EndArray", loc) }
func (t *testHandler) EndOfInput(loc jtoken.Anchor)        { t.pr(".") }

func (t *testHandler) BeginConstructor(loc jtoken.Anchor) error {
	t.pr("BeginConstructor %v", loc.Token().Value)
	return nil
}

func (t *testHandler) EndConstructor(loc jtoken.Anchor) error {
	t.pr("EndConstructor")
	return nil
}

func (t *testHandler) BeginMember(loc jtoken.Anchor) error {
	t.pr("BeginMember %v", loc.Token().Value)
	return nil
}

func (t *testHandler) EndMember(loc jtoken.Anchor) error {
	t.pr("EndMember %s", loc.Path())
	return nil
}

func (t *testHandler) Value(loc jtoken.Anchor) error {
	return t.event("Value "+loc.Token().String(), loc)
}

func (t *testHandler) Comment(loc jtoken.Anchor) {
	t.pr("Comment %v", loc.Token().Value)
}

type locHandler struct {
	testHandler
	locs *[]jtoken.Location
}

func (h *locHandler) Value(loc jtoken.Anchor) error {
	*h.locs = append(*h.locs, loc.Location())
	return nil
}
