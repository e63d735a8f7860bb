package datatype

import "testing"

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      string
		truncated bool
	}{
		{name: "year only", raw: "2017", want: "2017"},
		{name: "month", raw: "201708", want: "2017-08"},
		{name: "day", raw: "20170821", want: "2017-08-21"},
		{name: "full with offset", raw: "20170821112858-0500", want: "2017-08-21T11:28:58-05:00"},
		{name: "minute precision with offset", raw: "201708211128+0000", want: "2017-08-21T11:28:00+00:00"},
		{name: "fraction preserved", raw: "20170821112858.251-0500", want: "2017-08-21T11:28:58.251-05:00"},
		{name: "long fraction preserved", raw: "20170821112858.2510007+0100", want: "2017-08-21T11:28:58.2510007+01:00"},
		{name: "time without offset truncates", raw: "20170821112858", want: "2017-08-21", truncated: true},
		{name: "out of range offset truncates", raw: "20170821112858.251-9999", want: "2017-08-21", truncated: true},
		{name: "offset beyond fourteen hours truncates", raw: "201708211128+1430", want: "2017-08-21", truncated: true},
		{name: "fourteen hours exactly is valid", raw: "201708211128+1400", want: "2017-08-21T11:28:00+14:00"},
		{name: "date ignores trailing offset", raw: "20170821-0500", want: "2017-08-21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.raw)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) failed: %v", tt.raw, err)
			}
			if got := ts.String(); got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			if ts.Truncated != tt.truncated {
				t.Errorf("ParseTimestamp(%q) truncated = %v, want %v", tt.raw, ts.Truncated, tt.truncated)
			}
		})
	}
}

func TestParseTimestampErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "too short", raw: "201"},
		{name: "odd length", raw: "2017082"},
		{name: "non numeric", raw: "2O170821"},
		{name: "month out of range", raw: "20171321"},
		{name: "day out of range", raw: "20170832"},
		{name: "empty fraction", raw: "20170821112858.-0500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTimestamp(tt.raw); err == nil {
				t.Errorf("ParseTimestamp(%q) succeeded, want error", tt.raw)
			}
		})
	}
}

func TestTimestampTruncationDiscardsFraction(t *testing.T) {
	ts, err := ParseTimestamp("20170821112858.251-9999")
	if err != nil {
		t.Fatal(err)
	}
	if ts.Fraction != "" {
		t.Errorf("fraction = %q, want empty after truncation", ts.Fraction)
	}
	if ts.Offset != "" {
		t.Errorf("offset = %q, want empty after truncation", ts.Offset)
	}
	if ts.HasTime() {
		t.Error("HasTime() = true after truncation")
	}
}

func TestIntervalPoint(t *testing.T) {
	low, _ := ParseTimestamp("20170821")
	high, _ := ParseTimestamp("20170901")

	tests := []struct {
		name string
		iv   Interval
		want string
	}{
		{name: "low only", iv: Interval{Low: low}, want: "2017-08-21"},
		{name: "high only", iv: Interval{High: high}, want: "2017-09-01"},
		{name: "both boundaries", iv: Interval{Low: low, High: high}, want: ""},
		{name: "neither", iv: Interval{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.iv.Point()
			got := ""
			if p != nil {
				got = p.String()
			}
			if got != tt.want {
				t.Errorf("Point() = %q, want %q", got, tt.want)
			}
		})
	}
}
