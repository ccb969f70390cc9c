// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReadAsInt32 reads the next content token as a 32-bit integer.
func (r *reader) ReadAsInt32() (int32, bool, error) {
	v, ok, err := r.readAsInteger(readAsInt32, 32)
	return int32(v), ok, err
}

// ReadAsInt64 reads the next content token as a 64-bit integer.
func (r *reader) ReadAsInt64() (int64, bool, error) {
	return r.readAsInteger(readAsInt64, 64)
}

func (r *reader) readAsInteger(rt readType, bits int) (int64, bool, error) {
	target := "int" + strconv.Itoa(bits)
	kind, err := r.readContent(rt)
	if err != nil {
		return 0, false, err
	}
	switch kind {
	case None, Null, Undefined, EndArray:
		return 0, false, nil

	case Integer, Float:
		v, err := toInteger(r.val, bits)
		if err != nil {
			return 0, false, r.conversionError(fmt.Sprint(r.val), target, err)
		}
		r.replaceValue(Integer, integerValue(v, bits))
		return v, true, nil

	case String:
		s, err := r.stringPayload("integer")
		if err != nil {
			return 0, false, err
		} else if s == "" {
			r.replaceValue(Null, nil)
			return 0, false, nil
		}
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, bits)
		if err != nil {
			return 0, false, r.conversionError(s, target, unwrapNumError(err))
		}
		r.replaceValue(Integer, integerValue(v, bits))
		return v, true, nil
	}
	return 0, false, r.unexpected("integer")
}

// integerValue returns v with the payload type used for bits.
func integerValue(v int64, bits int) any {
	if bits == 32 {
		return int32(v)
	}
	return v
}

// ReadAsString reads the next content token as a string. Scalar values of
// other types are converted to their text representation.
func (r *reader) ReadAsString() (string, bool, error) {
	kind, err := r.readContent(readAsString)
	if err != nil {
		return "", false, err
	}
	switch kind {
	case None, Null, Undefined, EndArray:
		return "", false, nil
	case String:
		s, err := r.stringPayload("string")
		if err != nil {
			return "", false, err
		}
		return s, true, nil
	}
	if kind.IsPrimitive() && r.val != nil {
		s := formatValue(r.val)
		r.replaceValue(String, s)
		return s, true, nil
	}
	return "", false, r.unexpected("string")
}

// ReadAsBoolean reads the next content token as a Boolean.
func (r *reader) ReadAsBoolean() (bool, bool, error) {
	kind, err := r.readContent(readAsBoolean)
	if err != nil {
		return false, false, err
	}
	switch kind {
	case None, Null, Undefined:
		return false, false, nil
	case Integer, Float:
		b := !isZero(r.val)
		r.replaceValue(Boolean, b)
		return b, true, nil
	case String:
		s, err := r.stringPayload("boolean")
		if err != nil {
			return false, false, err
		} else if s == "" {
			r.replaceValue(Null, nil)
			return false, false, nil
		}
		switch t := strings.TrimSpace(s); {
		case strings.EqualFold(t, "true"):
			r.replaceValue(Boolean, true)
			return true, true, nil
		case strings.EqualFold(t, "false"):
			r.replaceValue(Boolean, false)
			return false, true, nil
		}
		return false, false, r.conversionError(s, "bool", strconv.ErrSyntax)
	case Boolean:
		if b, ok := r.val.(bool); ok {
			return b, true, nil
		}
	}
	return false, false, r.unexpected("boolean")
}

// ReadAsDouble reads the next content token as a 64-bit float.
func (r *reader) ReadAsDouble() (float64, bool, error) {
	kind, err := r.readContent(readAsDouble)
	if err != nil {
		return 0, false, err
	}
	switch kind {
	case None, Null, Undefined, EndArray:
		return 0, false, nil
	case Integer, Float:
		f := toFloat(r.val)
		r.replaceValue(Float, f)
		return f, true, nil
	case String:
		s, err := r.stringPayload("double")
		if err != nil {
			return 0, false, err
		} else if s == "" {
			r.replaceValue(Null, nil)
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false, r.conversionError(s, "float64", unwrapNumError(err))
		}
		r.replaceValue(Float, f)
		return f, true, nil
	}
	return 0, false, r.unexpected("double")
}

// ReadAsDecimal reads the next content token as a decimal.
func (r *reader) ReadAsDecimal() (decimal.Decimal, bool, error) {
	kind, err := r.readContent(readAsDecimal)
	if err != nil {
		return decimal.Zero, false, err
	}
	switch kind {
	case None, Null, Undefined, EndArray:
		return decimal.Zero, false, nil
	case Integer, Float:
		d, err := toDecimal(r.val)
		if err != nil {
			return decimal.Zero, false, r.conversionError(fmt.Sprint(r.val), "decimal", err)
		}
		r.replaceValue(Float, d)
		return d, true, nil
	case String:
		s, err := r.stringPayload("decimal")
		if err != nil {
			return decimal.Zero, false, err
		} else if s == "" {
			r.replaceValue(Null, nil)
			return decimal.Zero, false, nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return decimal.Zero, false, r.conversionError(s, "decimal", strconv.ErrSyntax)
		}
		r.replaceValue(Float, d)
		return d, true, nil
	}
	return decimal.Zero, false, r.unexpected("decimal")
}

// ReadAsDateTime reads the next content token as a date.
func (r *reader) ReadAsDateTime() (time.Time, bool, error) {
	kind, err := r.readContent(readAsDateTime)
	if err != nil {
		return time.Time{}, false, err
	}
	switch kind {
	case None, Null, Undefined:
		return time.Time{}, false, nil
	case Date:
		if t, ok := r.val.(time.Time); ok {
			return t, true, nil
		}
	case String:
		s, err := r.stringPayload("date")
		if err != nil {
			return time.Time{}, false, err
		} else if s == "" {
			r.replaceValue(Null, nil)
			return time.Time{}, false, nil
		}
		t, ok := parseDate(s, r.opts.timeZone())
		if !ok {
			return time.Time{}, false, r.conversionError(s, "date", strconv.ErrSyntax)
		}
		r.replaceValue(Date, t)
		return t, true, nil
	}
	return time.Time{}, false, r.unexpected("date")
}

// ReadAsBytes reads the next content token as binary data. A string is
// decoded as a GUID if it has that form, otherwise as base64. The bytes of a
// GUID are in RFC 4122 order, the order of its hex digits in the text; this
// differs from the mixed-endian layout of a .NET Guid. An array of
// integers is collected into bytes, and an object of the form
//
//	{"$type": "System.Byte[]", "$value": "..."}
//
// is unwrapped.
func (r *reader) ReadAsBytes() ([]byte, error) {
	kind, err := r.readContent(readAsBytes)
	if err != nil {
		return nil, err
	}
	switch kind {
	case None, Null, Undefined, EndArray:
		return nil, nil
	case Bytes:
		if data, ok := r.val.([]byte); ok {
			return data, nil
		}
	case String:
		s, err := r.stringPayload("bytes")
		if err != nil {
			return nil, err
		}
		data, err := decodeBytes(s)
		if err != nil {
			return nil, r.conversionError(s, "bytes", err)
		}
		r.replaceValue(Bytes, data)
		return data, nil
	case StartArray:
		return r.readArrayBytes()
	case StartObject:
		if err := r.readWrappedBytesHeader(); err != nil {
			return nil, err
		}
		data, err := r.ReadAsBytes()
		if err != nil {
			return nil, err
		}
		if ok, err := r.next(readAny); err != nil {
			return nil, err
		} else if !ok || r.tok != EndObject {
			return nil, r.unexpected("bytes")
		}
		r.replaceValue(Bytes, data)
		return data, nil
	}
	return nil, r.unexpected("bytes")
}

func (r *reader) readArrayBytes() ([]byte, error) {
	buf := []byte{}
	for {
		ok, err := r.next(readAny)
		if err != nil {
			return nil, err
		} else if !ok {
			return nil, r.inputErrorf(io.ErrUnexpectedEOF, "unexpected end when reading bytes")
		}
		switch r.tok {
		case Integer:
			v, err := toInteger(r.val, 64)
			if err != nil || v < 0 || v > math.MaxUint8 {
				return nil, r.conversionError(fmt.Sprint(r.val), "byte", strconv.ErrRange)
			}
			buf = append(buf, byte(v))
		case Comment:
			// skip
		case EndArray:
			r.replaceValue(Bytes, buf)
			return buf, nil
		default:
			return nil, r.syntaxErrorf("unexpected token when reading bytes: %v", r.tok)
		}
	}
}

// readWrappedBytesHeader consumes the "$type" member and the "$value" name of
// a wrapped byte array object.
func (r *reader) readWrappedBytesHeader() error {
	want := func(kind Kind, ok func(string) bool) error {
		if more, err := r.next(readAny); err != nil {
			return err
		} else if !more || r.tok != kind {
			return r.unexpected("bytes")
		}
		if s, _ := r.val.(string); !ok(s) {
			return r.unexpected("bytes")
		}
		return nil
	}
	if err := want(PropertyName, func(s string) bool { return s == "$type" }); err != nil {
		return err
	}
	if err := want(String, func(s string) bool {
		return strings.HasPrefix(s, "System.Byte[]") || s == "byte[]"
	}); err != nil {
		return err
	}
	return want(PropertyName, func(s string) bool { return s == "$value" })
}

func (r *reader) unexpected(what string) error {
	return r.syntaxErrorf("error reading %s: unexpected token %v", what, r.tok)
}

// stringPayload returns the payload of the current String token.
func (r *reader) stringPayload(what string) (string, error) {
	if s, ok := r.val.(string); ok {
		return s, nil
	}
	return "", r.syntaxErrorf("error reading %s: invalid payload %T for %v token", what, r.val, r.tok)
}

// decodeBytes decodes a GUID-shaped string to its 16 bytes, or otherwise
// decodes s as base64.
func decodeBytes(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	if len(s) == 36 {
		if id, err := uuid.Parse(s); err == nil {
			return id[:], nil
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, strconv.ErrSyntax
	}
	return data, nil
}

// toInteger converts a numeric payload to an integer of the given bit size,
// rounding half to even.
func toInteger(v any, bits int) (int64, error) {
	lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
	if bits == 32 {
		lo, hi = math.MinInt32, math.MaxInt32
	}
	switch t := v.(type) {
	case int64:
		if t < lo || t > hi {
			return 0, strconv.ErrRange
		}
		return t, nil
	case int32:
		return int64(t), nil
	case float64:
		f := math.RoundToEven(t)
		if math.IsNaN(f) || f < float64(lo) || f >= -float64(lo) {
			return 0, strconv.ErrRange
		}
		if i := int64(f); i >= lo && i <= hi {
			return i, nil
		}
		return 0, strconv.ErrRange
	case decimal.Decimal:
		d := t.RoundBank(0)
		if d.LessThan(decimal.NewFromInt(lo)) || d.GreaterThan(decimal.NewFromInt(hi)) {
			return 0, strconv.ErrRange
		}
		return d.IntPart(), nil
	}
	return 0, strconv.ErrSyntax
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case float64:
		return t
	case decimal.Decimal:
		return t.InexactFloat64()
	}
	return math.NaN()
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case int64:
		return decimal.NewFromInt(t), nil
	case int32:
		return decimal.NewFromInt32(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, strconv.ErrRange
		}
		return decimal.NewFromFloat(t), nil
	case decimal.Decimal:
		return t, nil
	}
	return decimal.Zero, strconv.ErrSyntax
}

func isZero(v any) bool {
	switch t := v.(type) {
	case int64:
		return t == 0
	case int32:
		return t == 0
	case float64:
		return t == 0
	case decimal.Decimal:
		return t.IsZero()
	}
	return false
}

// formatValue renders a scalar payload as text, independent of locale.
func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case float64:
		return formatFloat(t)
	case decimal.Decimal:
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	}
	return fmt.Sprint(v)
}

// formatFloat renders f in the shortest form that round-trips, using
// positional notation for moderate magnitudes and exponents otherwise.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if a := math.Abs(f); a == 0 || (a >= 1e-6 && a < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// unwrapNumError returns the sentinel cause of a strconv.NumError.
func unwrapNumError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}
