// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken_test

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/creachadair/jtoken"
	"github.com/shopspring/decimal"
)

// mustWrite calls each of the write functions in order, and fails if any of
// them reports an error.
func mustWrite(t *testing.T, w *jtoken.Writer, fs ...func(*jtoken.Writer) error) {
	t.Helper()
	for i, f := range fs {
		if err := f(w); err != nil {
			t.Fatalf("Write %d: unexpected error: %v", i+1, err)
		}
	}
}

func startObject(w *jtoken.Writer) error { return w.WriteStartObject() }
func startArray(w *jtoken.Writer) error  { return w.WriteStartArray() }
func endArray(w *jtoken.Writer) error    { return w.WriteEndArray() }

func prop(name string) func(*jtoken.Writer) error {
	return func(w *jtoken.Writer) error { return w.WritePropertyName(name) }
}

func value(v any) func(*jtoken.Writer) error {
	return func(w *jtoken.Writer) error { return w.WriteValue(v) }
}

func TestWriterAutoComplete(t *testing.T) {
	tests := []struct {
		name   string
		writes []func(*jtoken.Writer) error
		want   []jtoken.Token
	}{
		{"PendingProperty", []func(*jtoken.Writer) error{startObject, prop("a")}, []jtoken.Token{
			tk(StartObject, nil), tk(PropertyName, "a"), tk(Null, nil), tk(EndObject, nil),
		}},
		{"Nested", []func(*jtoken.Writer) error{startArray, startObject, prop("x"), value(1)}, []jtoken.Token{
			tk(StartArray, nil), tk(StartObject, nil), tk(PropertyName, "x"), tk(Integer, int64(1)),
			tk(EndObject, nil), tk(EndArray, nil),
		}},
		{"Constructor", []func(*jtoken.Writer) error{
			func(w *jtoken.Writer) error { return w.WriteStartConstructor("Foo") }, value("bar"),
		}, []jtoken.Token{
			tk(StartConstructor, "Foo"), tk(String, "bar"), tk(EndConstructor, nil),
		}},
		{"Complete", []func(*jtoken.Writer) error{startArray, value(true), endArray}, []jtoken.Token{
			tk(StartArray, nil), tk(Boolean, true), tk(EndArray, nil),
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf jtoken.TokenBuffer
			w := jtoken.NewWriter(&buf, nil)
			mustWrite(t, w, test.writes...)
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if diff := diffTokens(test.want, buf.Tokens()); diff != "" {
				t.Errorf("Tokens (-want, +got):\n%s", diff)
			}
			if w.State() != jtoken.Closed {
				t.Errorf("State after close: got %v, want %v", w.State(), jtoken.Closed)
			}
		})
	}
}

func TestWriterNoAutoComplete(t *testing.T) {
	var buf jtoken.TokenBuffer
	w := jtoken.NewWriter(&buf, &jtoken.WriterOptions{NoAutoComplete: true})
	mustWrite(t, w, startArray, value(1))
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	want := []jtoken.Token{tk(StartArray, nil), tk(Integer, int64(1))}
	if diff := diffTokens(want, buf.Tokens()); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

func TestWriterEndClosesInner(t *testing.T) {
	var buf jtoken.TokenBuffer
	w := jtoken.NewWriter(&buf, nil)
	mustWrite(t, w, startArray, startObject, prop("a"), startArray, value(1), endArray)

	want := []jtoken.Token{
		tk(StartArray, nil), tk(StartObject, nil), tk(PropertyName, "a"),
		tk(StartArray, nil), tk(Integer, int64(1)), tk(EndArray, nil),
	}
	if diff := diffTokens(want, buf.Tokens()); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
	if d := w.Depth(); d != 2 {
		t.Errorf("Depth: got %d, want 2", d)
	}

	// Closing the outer array closes the object first.
	mustWrite(t, w, endArray)
	want = append(want, tk(EndObject, nil), tk(EndArray, nil))
	if diff := diffTokens(want, buf.Tokens()); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
	if s := w.State(); s != jtoken.Start {
		t.Errorf("State: got %v, want %v", s, jtoken.Start)
	}
}

func TestWriterCloseTo(t *testing.T) {
	var buf jtoken.TokenBuffer
	w := jtoken.NewWriter(&buf, nil)
	mustWrite(t, w, startArray, startArray, startArray)
	if err := w.CloseTo(1); err != nil {
		t.Fatalf("CloseTo failed: %v", err)
	}
	if d := w.Depth(); d != 1 {
		t.Errorf("Depth: got %d, want 1", d)
	}
	if n := buf.Len(); n != 5 {
		t.Errorf("Got %d tokens, want 5", n)
	}
}

func TestWriterErrors(t *testing.T) {
	tests := []struct {
		name   string
		setup  []func(*jtoken.Writer) error
		bad    func(*jtoken.Writer) error
		wantSt jtoken.State
	}{
		{"PropertyInArray", []func(*jtoken.Writer) error{startArray}, prop("a"), jtoken.ArrayStart},
		{"ValueInObject", []func(*jtoken.Writer) error{startObject}, value(1), jtoken.ObjectStart},
		{"ValueAfterMember", []func(*jtoken.Writer) error{startObject, prop("a"), value(1)}, value(2), jtoken.ObjectState},
		{"PropertyAfterProperty", []func(*jtoken.Writer) error{startObject, prop("a")}, prop("b"), jtoken.Property},
		{"NothingToClose", nil, endArray, jtoken.Start},
		{"WrongClose", []func(*jtoken.Writer) error{startObject},
			func(w *jtoken.Writer) error { return w.WriteEndConstructor() }, jtoken.ObjectStart},
		{"UnsupportedValue", []func(*jtoken.Writer) error{startArray}, value(struct{}{}), jtoken.ArrayStart},
		{"BadPayload", []func(*jtoken.Writer) error{startArray},
			func(w *jtoken.Writer) error { return w.Write(tk(Integer, "one")) }, jtoken.ArrayStart},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf jtoken.TokenBuffer
			w := jtoken.NewWriter(&buf, nil)
			mustWrite(t, w, test.setup...)
			before := buf.Len()

			if err := test.bad(w); err == nil {
				t.Fatal("Write: got nil error, want error")
			}
			if got := w.State(); got != test.wantSt {
				t.Errorf("State after error: got %v, want %v", got, test.wantSt)
			}
			if got := buf.Len(); got != before {
				t.Errorf("Token count after error: got %d, want %d", got, before)
			}
		})
	}
}

func TestWriterSyntaxErrorType(t *testing.T) {
	w := jtoken.NewWriter(new(jtoken.TokenBuffer), nil)
	w.WriteStartObject()
	err := w.WriteBool(true)
	var se *jtoken.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("Got error %v, want %T", err, se)
	}
	if se.State != "ObjectStart" {
		t.Errorf("Error state: got %q, want %q", se.State, "ObjectStart")
	}
}

func TestWriterPath(t *testing.T) {
	var buf jtoken.TokenBuffer
	w := jtoken.NewWriter(&buf, nil)

	type step struct {
		write func(*jtoken.Writer) error
		path  string
	}
	for i, s := range []step{
		{startObject, ""},
		{prop("a"), "a"},
		{startArray, "a"},
		{value(1), "a[0]"},
		{value(2), "a[1]"},
		{startObject, "a[2]"},
		{prop("b c"), "a[2]['b c']"},
		{value(nil), "a[2]['b c']"},
		{func(w *jtoken.Writer) error { return w.WriteEndObject() }, "a[2]"},
		{endArray, "a"},
	} {
		if err := s.write(w); err != nil {
			t.Fatalf("Step %d: unexpected error: %v", i+1, err)
		}
		if got := w.Path(); got != s.path {
			t.Errorf("Step %d: path is %q, want %q", i+1, got, s.path)
		}
	}
}

func TestWriteValue(t *testing.T) {
	when := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	var buf jtoken.TokenBuffer
	w := jtoken.NewWriter(&buf, nil)
	mustWrite(t, w, startArray,
		value(nil), value("s"), value(true), value(3), value(uint8(4)), value(int32(-5)),
		value(2.5), value(float32(0.5)), value(decimal.RequireFromString("1.1")),
		value(when), value([]byte("hi")), value([]byte(nil)), value(tk(Undefined, nil)),
		endArray,
	)
	want := []jtoken.Token{
		tk(StartArray, nil),
		tk(Null, nil), tk(String, "s"), tk(Boolean, true), tk(Integer, int64(3)),
		tk(Integer, int64(4)), tk(Integer, int64(-5)),
		tk(Float, 2.5), tk(Float, 0.5), tk(Float, decimal.RequireFromString("1.1")),
		tk(Date, when), tk(Bytes, []byte("hi")), tk(Null, nil), tk(Undefined, nil),
		tk(EndArray, nil),
	}
	if diff := diffTokens(want, buf.Tokens()); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

func TestWriteFloatHandling(t *testing.T) {
	tests := []struct {
		opt  jtoken.FloatFormatHandling
		want []jtoken.Token
	}{
		{jtoken.FloatFormatString, []jtoken.Token{
			tk(String, "NaN"), tk(String, "Infinity"), tk(String, "-Infinity"), tk(Float, 1.5),
		}},
		{jtoken.FloatFormatSymbol, []jtoken.Token{
			tk(Float, math.NaN()), tk(Float, math.Inf(1)), tk(Float, math.Inf(-1)), tk(Float, 1.5),
		}},
		{jtoken.FloatFormatDefaultValue, []jtoken.Token{
			tk(Float, 0.0), tk(Float, 0.0), tk(Float, 0.0), tk(Float, 1.5),
		}},
	}
	for _, test := range tests {
		var buf jtoken.TokenBuffer
		w := jtoken.NewWriter(&buf, &jtoken.WriterOptions{FloatFormatHandling: test.opt})
		for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1.5} {
			if err := w.WriteFloat64(f); err != nil {
				t.Fatalf("WriteFloat64(%v): %v", f, err)
			}
			// Each value is a complete top-level value, so the state returns
			// to Start after each one.
			if w.State() != jtoken.Start {
				t.Errorf("State: got %v, want %v", w.State(), jtoken.Start)
			}
		}
		if diff := diffTokens(test.want, buf.Tokens()); diff != "" {
			t.Errorf("Handling %v: tokens (-want, +got):\n%s", test.opt, diff)
		}
	}
}

func TestWriteRaw(t *testing.T) {
	var buf jtoken.TokenBuffer
	w := jtoken.NewWriter(&buf, nil)
	mustWrite(t, w, startArray,
		func(w *jtoken.Writer) error { return w.WriteRaw("/* ignored */") },
		func(w *jtoken.Writer) error { return w.WriteRawValue("1") },
		func(w *jtoken.Writer) error { return w.WriteComment("note") },
		func(w *jtoken.Writer) error { return w.WriteRawValue("{}") },
	)
	if s := w.State(); s != jtoken.ArrayState {
		t.Errorf("State: got %v, want %v", s, jtoken.ArrayState)
	}
	if p := w.Path(); p != "[1]" {
		t.Errorf("Path: got %q, want %q", p, "[1]")
	}
	want := []jtoken.Token{
		tk(StartArray, nil), tk(Raw, "1"), tk(Comment, "note"), tk(Raw, "{}"),
	}
	if diff := diffTokens(want, buf.Tokens()); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

// hookRecorder is an Emitter that records the formatting hooks called by a
// Writer, as well as the tokens.
type hookRecorder struct {
	log []string
}

func (h *hookRecorder) EmitToken(tok jtoken.Token) error { h.log = append(h.log, tok.String()); return nil }
func (h *hookRecorder) WriteValueDelimiter() error       { h.log = append(h.log, ","); return nil }
func (h *hookRecorder) WriteIndent() error               { h.log = append(h.log, "NL"); return nil }
func (h *hookRecorder) WriteIndentSpace() error          { h.log = append(h.log, "SP"); return nil }
func (h *hookRecorder) WriteRaw(s string) error          { h.log = append(h.log, "raw:"+s); return nil }

func TestWriterHooks(t *testing.T) {
	var h hookRecorder
	w := jtoken.NewWriter(&h, nil)
	mustWrite(t, w, startObject, prop("a"), value(1), prop("b"), startArray, value(true), value(false),
		func(w *jtoken.Writer) error { return w.WriteRaw("x") },
	)
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	const want = `
StartObject
NL
PropertyName(a)
SP
Integer(1)
,
NL
PropertyName(b)
SP
StartArray
NL
Boolean(true)
,
NL
Boolean(false)
raw:x
NL
EndArray
NL
EndObject`
	if diff := diffStrings(want, strings.Join(h.log, "\n")); diff != "" {
		t.Errorf("Hooks (-want, +got):\n%s", diff)
	}
}

type failEmitter struct {
	jtoken.TokenBuffer
	err    error
	closed bool
}

func (f *failEmitter) EmitToken(tok jtoken.Token) error {
	if tok.Kind == String {
		return f.err
	}
	return f.TokenBuffer.EmitToken(tok)
}

func (f *failEmitter) Close() error { f.closed = true; return nil }

func TestWriterEmitterError(t *testing.T) {
	boom := errors.New("boom")
	out := &failEmitter{err: boom}
	w := jtoken.NewWriter(out, &jtoken.WriterOptions{CloseOutput: true})
	mustWrite(t, w, startArray)

	if err := w.WriteString("x"); !errors.Is(err, boom) {
		t.Fatalf("WriteString: got %v, want %v", err, boom)
	}
	if s := w.State(); s != jtoken.Error {
		t.Errorf("State: got %v, want %v", s, jtoken.Error)
	}
	if err := w.WriteNull(); !errors.Is(err, boom) {
		t.Errorf("WriteNull after failure: got %v, want %v", err, boom)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: unexpected error: %v", err)
	}
	if !out.closed {
		t.Error("Close did not close the emitter")
	}
}

func TestWriteToken(t *testing.T) {
	const input = `{"a": [1, 2, {"b": null}], /* note */ "c": "d"}`

	t.Run("All", func(t *testing.T) {
		var buf jtoken.TokenBuffer
		r := jtoken.NewTextReader(strings.NewReader(input), nil)
		if err := jtoken.NewWriter(&buf, nil).WriteToken(r, true, false, true); err != nil {
			t.Fatalf("WriteToken failed: %v", err)
		}
		want := mustReadAll(t, input, nil)
		if diff := diffTokens(want, buf.Tokens()); diff != "" {
			t.Errorf("Tokens (-want, +got):\n%s", diff)
		}
	})

	t.Run("NoComments", func(t *testing.T) {
		var buf jtoken.TokenBuffer
		r := jtoken.NewTextReader(strings.NewReader(input), nil)
		if err := jtoken.NewWriter(&buf, nil).WriteToken(r, true, false, false); err != nil {
			t.Fatalf("WriteToken failed: %v", err)
		}
		want := mustReadAll(t, input, &jtoken.ReaderOptions{DiscardComments: true})
		if diff := diffTokens(want, buf.Tokens()); diff != "" {
			t.Errorf("Tokens (-want, +got):\n%s", diff)
		}
	})

	t.Run("Subtree", func(t *testing.T) {
		var buf jtoken.TokenBuffer
		r := jtoken.NewTextReader(strings.NewReader(input), nil)
		for i := 0; i < 3; i++ { // {, "a", [
			if _, err := r.Read(); err != nil {
				t.Fatalf("Read failed: %v", err)
			}
		}
		if err := jtoken.NewWriter(&buf, nil).WriteToken(r, true, false, false); err != nil {
			t.Fatalf("WriteToken failed: %v", err)
		}
		want := []jtoken.Token{
			tk(StartArray, nil), tk(Integer, int64(1)), tk(Integer, int64(2)),
			tk(StartObject, nil), tk(PropertyName, "b"), tk(Null, nil), tk(EndObject, nil),
			tk(EndArray, nil),
		}
		if diff := diffTokens(want, buf.Tokens()); diff != "" {
			t.Errorf("Tokens (-want, +got):\n%s", diff)
		}
		if r.Kind() != EndArray {
			t.Errorf("Reader token after copy: got %v, want %v", r.Kind(), EndArray)
		}
	})

	t.Run("NoChildren", func(t *testing.T) {
		var buf jtoken.TokenBuffer
		r := jtoken.NewTextReader(strings.NewReader(`[1, 2]`), nil)
		r.Read()
		r.Read()
		if err := jtoken.NewWriter(&buf, nil).WriteToken(r, false, false, false); err != nil {
			t.Fatalf("WriteToken failed: %v", err)
		}
		if diff := diffTokens([]jtoken.Token{tk(Integer, int64(1))}, buf.Tokens()); diff != "" {
			t.Errorf("Tokens (-want, +got):\n%s", diff)
		}
	})

	t.Run("Incomplete", func(t *testing.T) {
		r := jtoken.NewTextReader(strings.NewReader(`[1, 2`), nil)
		err := jtoken.NewWriter(new(jtoken.TokenBuffer), nil).WriteToken(r, true, false, false)
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("WriteToken: got %v, want %v", err, io.ErrUnexpectedEOF)
		}
	})
}

func TestWriteTokenDateConstructor(t *testing.T) {
	const input = `[new Date(1000), new Date(2020, 0, 15), new Date(2020, 11, 0, 13, 14, 15, 16), new Foo(1)]`
	var buf jtoken.TokenBuffer
	r := jtoken.NewTextReader(strings.NewReader(input), nil)
	if err := jtoken.NewWriter(&buf, nil).WriteToken(r, true, true, false); err != nil {
		t.Fatalf("WriteToken failed: %v", err)
	}
	want := []jtoken.Token{
		tk(StartArray, nil),
		tk(Date, time.UnixMilli(1000).UTC()),
		tk(Date, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)),
		tk(Date, time.Date(2020, 12, 1, 13, 14, 15, 16*int(time.Millisecond), time.UTC)),
		tk(StartConstructor, "Foo"), tk(Integer, int64(1)), tk(EndConstructor, nil),
		tk(EndArray, nil),
	}
	if diff := diffTokens(want, buf.Tokens()); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}

	for _, bad := range []string{`new Date()`, `new Date("x")`, `new Date(1,2,3,4,5,6,7,8)`} {
		r := jtoken.NewTextReader(strings.NewReader(bad), nil)
		if err := jtoken.NewWriter(new(jtoken.TokenBuffer), nil).WriteToken(r, true, true, false); err == nil {
			t.Errorf("WriteToken(%#q): got nil error", bad)
		}
	}
}
