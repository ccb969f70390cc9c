// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// WriteNull writes a null value.
func (w *Writer) WriteNull() error { return w.writeValue(Null, nil) }

// WriteUndefined writes an undefined value.
func (w *Writer) WriteUndefined() error { return w.writeValue(Undefined, nil) }

// WriteString writes a string value.
func (w *Writer) WriteString(s string) error { return w.writeValue(String, s) }

// WriteInt64 writes an integer value.
func (w *Writer) WriteInt64(v int64) error { return w.writeValue(Integer, v) }

// WriteBool writes a Boolean value.
func (w *Writer) WriteBool(b bool) error { return w.writeValue(Boolean, b) }

// WriteDecimal writes a decimal value.
func (w *Writer) WriteDecimal(d decimal.Decimal) error { return w.writeValue(Float, d) }

// WriteDate writes a date value.
func (w *Writer) WriteDate(t time.Time) error { return w.writeValue(Date, t) }

// WriteBytes writes binary data. A nil slice is written as null.
func (w *Writer) WriteBytes(data []byte) error {
	if data == nil {
		return w.WriteNull()
	}
	return w.writeValue(Bytes, data)
}

// WriteFloat64 writes a floating-point value. NaN and the infinities are
// written as determined by the FloatFormatHandling option.
func (w *Writer) WriteFloat64(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		switch w.opts.floatFormat() {
		case FloatFormatString:
			return w.writeValue(String, formatFloat(f))
		case FloatFormatDefaultValue:
			f = 0
		}
	}
	return w.writeValue(Float, f)
}

// WriteValue writes v as a value token. The concrete type of v must be one
// of those accepted by TokenOf; a Token is written as by Write.
func (w *Writer) WriteValue(v any) error {
	switch t := v.(type) {
	case Token:
		return w.Write(t)
	case float64:
		return w.WriteFloat64(t)
	case float32:
		return w.WriteFloat64(float64(t))
	case []byte:
		return w.WriteBytes(t)
	}
	tok, ok := tokenOf(v)
	if !ok {
		return fmt.Errorf("jtoken: unsupported value type %T", v)
	}
	return w.writeValue(tok.Kind, tok.Value)
}
