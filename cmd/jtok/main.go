// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Program jtok reads JSON text and prints the tokens it contains.
//
// Usage:
//
//	jtok [flags] [file ...]
//
// With no file arguments, jtok reads from standard input. Each token is
// printed with its location, path, and kind. The --format flag selects plain
// text, JSON lines, or a YAML document per input.
//
// With --replay, the tokens are also copied through a Writer into a token
// buffer, and the buffer is read back and checked against the original
// stream.
package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creachadair/jtoken"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/gookit/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

func main() { os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)) }

type settings struct {
	maxDepth        int
	dates           string
	zone            string
	decimal         bool
	multi           bool
	discardComments bool
	bufferSize      int
	format          string
	color           bool
	replay          bool
}

var zones = map[string]jtoken.DateTimeZoneHandling{
	"roundtrip":   jtoken.RoundtripKind,
	"local":       jtoken.Local,
	"utc":         jtoken.UTC,
	"unspecified": jtoken.Unspecified,
}

var dateModes = map[string]jtoken.DateParseHandling{
	"none":     jtoken.DateParseNone,
	"datetime": jtoken.DateParseDateTime,
}

func (s *settings) readerOptions() (*jtoken.ReaderOptions, error) {
	dp, ok := dateModes[s.dates]
	if !ok {
		return nil, fmt.Errorf("invalid --dates value %q", s.dates)
	}
	tz, ok := zones[s.zone]
	if !ok {
		return nil, fmt.Errorf("invalid --tz value %q", s.zone)
	}
	opts := &jtoken.ReaderOptions{
		MaxDepth:               s.maxDepth,
		DateParseHandling:      dp,
		DateTimeZoneHandling:   tz,
		SupportMultipleContent: s.multi,
		DiscardComments:        s.discardComments,
		BufferSize:             s.bufferSize,
		NameTable:              jtoken.NewNameTable(),
	}
	if s.decimal {
		opts.FloatParseHandling = jtoken.FloatParseDecimal
	}
	return opts, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "jtok: ", 0)

	var s settings
	fs := pflag.NewFlagSet("jtok", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: jtok [flags] [file ...]")
		fs.PrintDefaults()
	}
	fs.IntVar(&s.maxDepth, "max-depth", 64, "Maximum container depth (0 for no limit)")
	fs.StringVar(&s.dates, "dates", "none", "Date parsing (none, datetime)")
	fs.StringVar(&s.zone, "tz", "roundtrip", "Date time zone handling (roundtrip, local, utc, unspecified)")
	fs.BoolVar(&s.decimal, "decimal", false, "Report floating-point values as decimals")
	fs.BoolVarP(&s.multi, "multi", "m", false, "Accept multiple top-level values")
	fs.BoolVar(&s.discardComments, "discard-comments", false, "Do not report comments")
	fs.IntVar(&s.bufferSize, "buffer-size", 0, "Scan buffer size in bytes (0 for the default)")
	fs.StringVarP(&s.format, "format", "f", "text", "Output format (text, json, yaml)")
	fs.BoolVar(&s.color, "color", false, "Colorize text output")
	fs.BoolVar(&s.replay, "replay", false, "Check the token stream by replaying it through a buffer")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	opts, err := s.readerOptions()
	if err != nil {
		logger.Print(err)
		return 2
	}
	var p printer
	switch s.format {
	case "text":
		p = &textPrinter{w: stdout}
	case "json":
		p = &jsonPrinter{enc: json.NewEncoder(stdout)}
	case "yaml":
		p = &yamlPrinter{w: stdout}
	default:
		logger.Printf("invalid --format value %q", s.format)
		return 2
	}
	color.Enable = s.color
	if s.color {
		color.ForceColor()
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	status := 0
	for _, name := range inputs {
		if err := processInput(name, stdin, opts, &s, p, logger); err != nil {
			logger.Printf("%s: %v", name, err)
			status = 1
		}
	}
	return status
}

func processInput(name string, stdin io.Reader, opts *jtoken.ReaderOptions, s *settings, p printer, logger *log.Logger) error {
	var in io.Reader = stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	r := jtoken.NewTextReader(in, opts)
	defer r.Close()

	var buf jtoken.TokenBuffer
	var w *jtoken.Writer
	if s.replay {
		w = jtoken.NewWriter(&buf, &jtoken.WriterOptions{
			FloatFormatHandling: jtoken.FloatFormatSymbol,
		})
	}

	var toks []jtoken.Token
	for {
		ok, err := r.Read()
		if errors.Is(err, jtoken.ErrMaxDepth) {
			// The token is still valid; report the error and carry on.
			logger.Printf("%s: %v", name, err)
		} else if err != nil {
			return errors.Join(err, p.flush())
		} else if !ok {
			break
		}
		tok := r.Token()
		if err := p.print(newRecord(r, tok)); err != nil {
			return err
		}
		if w != nil {
			toks = append(toks, tok)
			if err := w.Write(tok); err != nil {
				return fmt.Errorf("replay: %w", err)
			}
		}
	}
	if err := p.flush(); err != nil {
		return err
	}
	if r.Depth() != 0 {
		return fmt.Errorf("input ended inside %d open container(s) at %q", r.Depth(), r.Path())
	}
	if w != nil {
		return checkReplay(w, &buf, opts, toks)
	}
	return nil
}

// checkReplay closes w and verifies that the tokens in buf, as seen through a
// BufferReader, match the original tokens.
func checkReplay(w *jtoken.Writer, buf *jtoken.TokenBuffer, opts *jtoken.ReaderOptions, want []jtoken.Token) error {
	if err := w.Close(); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	br := buf.NewReader(opts)
	var got []jtoken.Token
	for {
		ok, err := br.Read()
		if err != nil && !errors.Is(err, jtoken.ErrMaxDepth) {
			return fmt.Errorf("replay: %w", err)
		} else if !ok {
			break
		}
		got = append(got, br.Token())
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs(), cmpopts.EquateEmpty()); diff != "" {
		return fmt.Errorf("replay mismatch (-read, +replayed):\n%s", diff)
	}
	return nil
}

// A record is the printable summary of a single token.
type record struct {
	Path   string `json:"path" yaml:"path"`
	Kind   string `json:"kind" yaml:"kind"`
	Value  any    `json:"value" yaml:"value"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`

	loc jtoken.Location
	tok jtoken.Token
}

func newRecord(r *jtoken.TextReader, tok jtoken.Token) record {
	loc := r.Location()
	return record{
		Path:   r.Path(),
		Kind:   tok.Kind.String(),
		Value:  plainValue(tok.Value),
		Line:   loc.First.Line,
		Column: loc.First.Column,
		loc:    loc,
		tok:    tok,
	}
}

// plainValue converts a token payload into a value that the JSON and YAML
// encoders can represent without loss.
func plainValue(v any) any {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'g', -1, 64)
		}
	case decimal.Decimal:
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	}
	return v
}

type printer interface {
	print(record) error
	flush() error
}

// textPrinter writes one line per token. Colors are applied only when
// enabled by the --color flag.
type textPrinter struct{ w io.Writer }

func (p *textPrinter) print(rec record) error {
	path := rec.Path
	if path == "" {
		path = "$"
	}
	line := []string{
		color.Gray.Sprint(rec.loc.String()),
		color.Yellow.Sprint(path),
		color.Cyan.Sprint(rec.Kind),
	}
	if v := textValue(rec.tok); v != "" {
		line = append(line, color.Green.Sprint(v))
	}
	_, err := fmt.Fprintln(p.w, strings.Join(line, " "))
	return err
}

func (*textPrinter) flush() error { return nil }

func textValue(tok jtoken.Token) string {
	switch v := tok.Value.(type) {
	case nil:
		return ""
	case string:
		return jtoken.Quote(v)
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

type jsonPrinter struct{ enc *json.Encoder }

func (p *jsonPrinter) print(rec record) error { return p.enc.Encode(rec) }
func (*jsonPrinter) flush() error             { return nil }

// yamlPrinter collects the records of one input and writes them as a single
// YAML document when flushed.
type yamlPrinter struct {
	w    io.Writer
	recs []record
}

func (p *yamlPrinter) print(rec record) error { p.recs = append(p.recs, rec); return nil }

func (p *yamlPrinter) flush() error {
	if len(p.recs) == 0 {
		return nil
	}
	out, err := yaml.Marshal(p.recs)
	p.recs = nil
	if err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	if _, err := io.WriteString(p.w, "---\n"); err != nil {
		return err
	}
	_, err = p.w.Write(out)
	return err
}
