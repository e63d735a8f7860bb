package datatype

import (
	"fmt"
	"strconv"
	"strings"
)

// Precision is the number of calendar/time components present in a
// timestamp, from year down to second.
type Precision int

// Timestamp precisions, coarse to fine.
const (
	PrecisionYear Precision = iota + 1
	PrecisionMonth
	PrecisionDay
	PrecisionHour
	PrecisionMinute
	PrecisionSecond
)

// Timestamp is a compact HL7 timestamp (YYYY[MM[DD[HH[MM[SS[.S+]]]]]] with
// an optional +-ZZZZ offset) decoded to its stated precision.
//
// Firm rule: a time-bearing value is never kept without a valid offset.
// When a time-of-day component is present but the offset is absent or out
// of range, the timestamp is truncated to date precision and Truncated is
// set; the fraction and offset are discarded along with the time.
type Timestamp struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int

	// Fraction holds fractional-second digits verbatim, without the dot.
	// Preserved exactly at any length whenever the time component survives.
	Fraction string

	// Offset is the UTC offset formatted as +-hh:mm. Empty at date
	// precisions.
	Offset string

	Precision Precision

	// Truncated is set when a time-of-day component was discarded because
	// its offset was absent or invalid.
	Truncated bool
}

// ParseTimestamp decodes a compact HL7 timestamp. It returns an error only
// for values that cannot be read as a timestamp at all; offset problems
// truncate rather than fail.
func ParseTimestamp(raw string) (*Timestamp, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("datatype: empty timestamp")
	}

	// Split the offset. A sign can only introduce an offset: the datetime
	// body is all digits plus an optional fraction dot.
	body := s
	offsetRaw := ""
	if idx := strings.IndexAny(s, "+-"); idx > 0 {
		body = s[:idx]
		offsetRaw = s[idx:]
	}

	fraction := ""
	if idx := strings.IndexByte(body, '.'); idx != -1 {
		fraction = body[idx+1:]
		body = body[:idx]
		if fraction == "" || !allDigits(fraction) {
			return nil, fmt.Errorf("datatype: invalid fractional seconds in %q", raw)
		}
	}

	if !allDigits(body) {
		return nil, fmt.Errorf("datatype: non-numeric timestamp %q", raw)
	}

	ts := &Timestamp{Fraction: fraction}

	switch {
	case len(body) >= 4:
		ts.Year = mustAtoi(body[0:4])
		ts.Precision = PrecisionYear
	default:
		return nil, fmt.Errorf("datatype: timestamp %q shorter than a year", raw)
	}
	if len(body) >= 6 {
		ts.Month = mustAtoi(body[4:6])
		ts.Precision = PrecisionMonth
	}
	if len(body) >= 8 {
		ts.Day = mustAtoi(body[6:8])
		ts.Precision = PrecisionDay
	}
	if len(body) >= 10 {
		ts.Hour = mustAtoi(body[8:10])
		ts.Precision = PrecisionHour
	}
	if len(body) >= 12 {
		ts.Minute = mustAtoi(body[10:12])
		ts.Precision = PrecisionMinute
	}
	if len(body) >= 14 {
		ts.Second = mustAtoi(body[12:14])
		ts.Precision = PrecisionSecond
	}
	if len(body) > 14 || len(body)%2 != 0 {
		return nil, fmt.Errorf("datatype: timestamp %q has unrecognized length", raw)
	}

	if err := ts.checkCalendar(); err != nil {
		return nil, err
	}

	if ts.Precision < PrecisionHour {
		// Date-only values carry no offset; a supplied one is advisory noise.
		ts.Fraction = ""
		return ts, nil
	}

	offset, ok := parseOffset(offsetRaw)
	if !ok {
		ts.truncateToDate()
		return ts, nil
	}
	ts.Offset = offset
	return ts, nil
}

// checkCalendar rejects values outside calendar/clock ranges.
func (t *Timestamp) checkCalendar() error {
	if t.Precision >= PrecisionMonth && (t.Month < 1 || t.Month > 12) {
		return fmt.Errorf("datatype: month %d out of range", t.Month)
	}
	if t.Precision >= PrecisionDay && (t.Day < 1 || t.Day > 31) {
		return fmt.Errorf("datatype: day %d out of range", t.Day)
	}
	if t.Precision >= PrecisionHour && t.Hour > 23 {
		return fmt.Errorf("datatype: hour %d out of range", t.Hour)
	}
	if t.Precision >= PrecisionMinute && t.Minute > 59 {
		return fmt.Errorf("datatype: minute %d out of range", t.Minute)
	}
	if t.Precision >= PrecisionSecond && t.Second > 59 {
		return fmt.Errorf("datatype: second %d out of range", t.Second)
	}
	return nil
}

// truncateToDate drops the time-of-day component, fraction and offset.
func (t *Timestamp) truncateToDate() {
	if t.Precision > PrecisionDay {
		t.Precision = PrecisionDay
	}
	t.Hour, t.Minute, t.Second = 0, 0, 0
	t.Fraction = ""
	t.Offset = ""
	t.Truncated = true
}

// parseOffset validates a +-HHMM offset. Offsets beyond +-14:00 are out of
// range (no real timezone exceeds it).
func parseOffset(s string) (string, bool) {
	if len(s) != 5 {
		return "", false
	}
	sign := s[0]
	if sign != '+' && sign != '-' {
		return "", false
	}
	if !allDigits(s[1:]) {
		return "", false
	}
	hh := mustAtoi(s[1:3])
	mm := mustAtoi(s[3:5])
	if mm > 59 || hh > 14 || (hh == 14 && mm != 0) {
		return "", false
	}
	return fmt.Sprintf("%c%02d:%02d", sign, hh, mm), true
}

// String renders the timestamp as a FHIR date/dateTime literal at its
// stated precision. Time-bearing values always include the offset.
func (t *Timestamp) String() string {
	switch t.Precision {
	case PrecisionYear:
		return fmt.Sprintf("%04d", t.Year)
	case PrecisionMonth:
		return fmt.Sprintf("%04d-%02d", t.Year, t.Month)
	case PrecisionDay:
		return fmt.Sprintf("%04d-%02d-%02d", t.Year, t.Month, t.Day)
	default:
		// FHIR dateTime requires full hh:mm:ss once any time is present;
		// components below the stated precision are zero.
		s := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
			t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
		if t.Fraction != "" {
			s += "." + t.Fraction
		}
		return s + t.Offset
	}
}

// HasTime reports whether a time-of-day component survived parsing.
func (t *Timestamp) HasTime() bool {
	return t.Precision >= PrecisionHour
}

// Interval is a time range; either boundary may be absent or null-flavored.
type Interval struct {
	Low  *Timestamp
	High *Timestamp

	// LowNull/HighNull record explicitly null-flavored boundaries.
	LowNull  NullFlavor
	HighNull NullFlavor
}

// Point collapses an interval to a single instant when only one boundary
// carries data.
func (iv *Interval) Point() *Timestamp {
	if iv.Low != nil && iv.High == nil {
		return iv.Low
	}
	if iv.Low == nil && iv.High != nil {
		return iv.High
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
