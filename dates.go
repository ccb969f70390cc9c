// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtoken

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// isoLayouts are tried in order to parse ISO 8601 dates. Fractional seconds
// are accepted by all of them.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
}

// looseLayouts are tried by parseDate after the strict forms fail.
var looseLayouts = []string{
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// detectDate reports whether s has the shape of a date string, and if so
// parses it. This is used to recognize dates in ordinary string values, so
// only the ISO 8601 and /Date(ms)/ forms are considered.
func detectDate(s string, tz DateTimeZoneHandling) (time.Time, bool) {
	switch {
	case len(s) >= 9 && s[0] == '/':
		return parseMSDate(s, tz)
	case len(s) >= 19 && len(s) <= 40 && isDigit(s[0]) && s[10] == 'T':
		return parseISODate(s, tz)
	}
	return time.Time{}, false
}

// parseDate parses s as a date in any supported form.
func parseDate(s string, tz DateTimeZoneHandling) (time.Time, bool) {
	if t, ok := detectDate(s, tz); ok {
		return t, true
	}
	s = strings.TrimSpace(s)
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return adjustZone(t, tz), true
		}
	}
	return time.Time{}, false
}

func parseISODate(s string, tz DateTimeZoneHandling) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return adjustZone(t, tz), true
		}
	}
	return time.Time{}, false
}

// parseMSDate parses the form /Date(ms)/ or /Date(ms+hhmm)/, where ms is
// milliseconds since the Unix epoch and the optional suffix is an offset.
func parseMSDate(s string, tz DateTimeZoneHandling) (time.Time, bool) {
	body, ok := strings.CutPrefix(s, "/Date(")
	if !ok {
		return time.Time{}, false
	}
	body, ok = strings.CutSuffix(body, ")/")
	if !ok || body == "" {
		return time.Time{}, false
	}

	// The offset, if any, follows the first sign after the leading digits.
	var zone *time.Location
	if i := strings.LastIndexAny(body, "+-"); i > 0 {
		off := body[i+1:]
		if len(off) != 4 {
			return time.Time{}, false
		}
		hh, err1 := strconv.Atoi(off[:2])
		mm, err2 := strconv.Atoi(off[2:])
		if err1 != nil || err2 != nil {
			return time.Time{}, false
		}
		secs := (hh*60 + mm) * 60
		if body[i] == '-' {
			secs = -secs
		}
		zone = time.FixedZone("", secs)
		body = body[:i]
	}
	ms, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	t := time.UnixMilli(ms).UTC()
	if zone != nil {
		t = t.In(zone)
	}
	return adjustZone(t, tz), true
}

// adjustZone applies the time zone policy tz to t.
func adjustZone(t time.Time, tz DateTimeZoneHandling) time.Time {
	switch tz {
	case Local:
		return t.Local()
	case UTC:
		return t.UTC()
	case Unspecified:
		return time.Date(t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return t
}

var (
	errDateNoArgs  = errors.New("date constructor has no arguments")
	errDateTooMany = errors.New("unexpected number of arguments when reading date constructor")
)

// constructorDate interprets the arguments of a "new Date(...)" constructor.
// A single argument is milliseconds since the Unix epoch. Otherwise the
// arguments are year, month (0-based), day, hours, minutes, seconds and
// milliseconds, of which at least year and month are required. A day of 0
// is treated as 1.
func constructorDate(args []int64) (time.Time, error) {
	switch n := len(args); {
	case n == 0:
		return time.Time{}, errDateNoArgs
	case n == 1:
		return time.UnixMilli(args[0]).UTC(), nil
	case n > 7:
		return time.Time{}, errDateTooMany
	}
	var parts [7]int64
	copy(parts[:], args)
	if parts[2] == 0 {
		parts[2] = 1
	}
	return time.Date(int(parts[0]), time.Month(parts[1]+1), int(parts[2]),
		int(parts[3]), int(parts[4]), int(parts[5]), int(parts[6])*int(time.Millisecond),
		time.UTC), nil
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }
