// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

// DateParseHandling controls whether a reader converts date-shaped strings
// to Date tokens.
type DateParseHandling byte

const (
	DateParseNone     DateParseHandling = iota // strings remain strings
	DateParseDateTime                          // date-shaped strings become Date tokens
)

// DateTimeZoneHandling controls how the time zone of a parsed date is
// adjusted before it is reported.
type DateTimeZoneHandling byte

const (
	// RoundtripKind preserves the offset recorded in the text. A date with no
	// offset is reported in UTC.
	RoundtripKind DateTimeZoneHandling = iota

	// Local converts dates to the local time zone.
	Local

	// UTC converts dates to UTC.
	UTC

	// Unspecified discards the offset recorded in the text and reports the
	// wall-clock time in UTC.
	Unspecified
)

// FloatParseHandling controls the payload type of Float tokens.
type FloatParseHandling byte

const (
	FloatParseDouble  FloatParseHandling = iota // float64 payloads
	FloatParseDecimal                           // decimal.Decimal payloads
)

// FloatFormatHandling controls how a writer reports the non-finite values
// NaN, +Inf and -Inf.
type FloatFormatHandling byte

const (
	FloatFormatString       FloatFormatHandling = iota // as the strings "NaN", "Infinity", "-Infinity"
	FloatFormatSymbol                                  // as Float tokens carrying the IEEE value
	FloatFormatDefaultValue                            // as the Float value 0
)

// ReaderOptions are settings for a reader. A nil *ReaderOptions provides
// default values for all settings.
type ReaderOptions struct {
	// If positive, the maximum depth of nested containers. A reader reports
	// an error wrapping ErrMaxDepth once each time its depth first exceeds
	// this value; the condition clears when the depth returns to the limit.
	MaxDepth int

	// Whether date-shaped strings are reported as Date tokens.
	DateParseHandling DateParseHandling

	// How the time zones of parsed dates are adjusted.
	DateTimeZoneHandling DateTimeZoneHandling

	// The payload type of Float tokens.
	FloatParseHandling FloatParseHandling

	// If true, the reader accepts multiple top-level values, optionally
	// separated by commas. Otherwise, text following a complete top-level
	// value is an error.
	SupportMultipleContent bool

	// If true, comments are scanned and discarded rather than reported as
	// Comment tokens.
	DiscardComments bool

	// If true, closing the reader also closes its input, if the input
	// implements io.Closer.
	CloseInput bool

	// If set, property names are interned in this table.
	NameTable *NameTable

	// The initial size in bytes of the text reader's scan buffer.
	// If zero, a default size is used.
	BufferSize int
}

func (o *ReaderOptions) maxDepth() int {
	if o == nil || o.MaxDepth <= 0 {
		return 0
	}
	return o.MaxDepth
}

func (o *ReaderOptions) dateParse() DateParseHandling {
	if o == nil {
		return DateParseNone
	}
	return o.DateParseHandling
}

func (o *ReaderOptions) timeZone() DateTimeZoneHandling {
	if o == nil {
		return RoundtripKind
	}
	return o.DateTimeZoneHandling
}

func (o *ReaderOptions) floatParse() FloatParseHandling {
	if o == nil {
		return FloatParseDouble
	}
	return o.FloatParseHandling
}

func (o *ReaderOptions) multipleContent() bool { return o != nil && o.SupportMultipleContent }

func (o *ReaderOptions) discardComments() bool { return o != nil && o.DiscardComments }

func (o *ReaderOptions) closeInput() bool { return o != nil && o.CloseInput }

func (o *ReaderOptions) nameTable() *NameTable {
	if o == nil {
		return nil
	}
	return o.NameTable
}

const defaultBufferSize = 1024

func (o *ReaderOptions) bufferSize() int {
	if o == nil || o.BufferSize <= 0 {
		return defaultBufferSize
	}
	return o.BufferSize
}

// WriterOptions are settings for a writer. A nil *WriterOptions provides
// default values for all settings.
type WriterOptions struct {
	// If true, closing the writer also closes its emitter, if the emitter
	// implements io.Closer.
	CloseOutput bool

	// How non-finite floating-point values are written.
	FloatFormatHandling FloatFormatHandling

	// If true, Close does not complete open containers.
	NoAutoComplete bool
}

func (o *WriterOptions) closeOutput() bool { return o != nil && o.CloseOutput }

func (o *WriterOptions) floatFormat() FloatFormatHandling {
	if o == nil {
		return FloatFormatString
	}
	return o.FloatFormatHandling
}

func (o *WriterOptions) autoComplete() bool { return o == nil || !o.NoAutoComplete }
