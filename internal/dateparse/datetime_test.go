package dateparse

import (
	"errors"
	"testing"
	"time"
)

// reference is a Wednesday at noon.
var reference = time.Date(2016, time.March, 23, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestParseSingle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want time.Time
	}{
		{in: "", want: date(2016, time.March, 23, 23, 59)},
		{in: "today 2:30pm", want: date(2016, time.March, 23, 14, 30)},
		{in: "today 2:30 PM", want: date(2016, time.March, 23, 14, 30)},
		{in: "2/3 21:33", want: date(2016, time.March, 2, 21, 33)},
		{in: "2/3 00:00", want: date(2016, time.March, 2, 0, 0)},
		{in: "10pm", want: date(2016, time.March, 23, 22, 0)},
		{in: "10am", want: date(2016, time.March, 24, 10, 0)},
		{in: "00:00", want: date(2016, time.March, 24, 0, 0)},
		{in: "noon", want: date(2016, time.March, 24, 12, 0)},
		{in: "1300", want: date(2016, time.March, 23, 13, 0)},
		{in: "tomorrow", want: date(2016, time.March, 24, 23, 59)},
		{in: "tmr 9am", want: date(2016, time.March, 24, 9, 0)},
		{in: "day after tommorrow", want: date(2016, time.March, 25, 23, 59)},
		{in: "5pm day after tomorrow", want: date(2016, time.March, 25, 17, 0)},
		{in: "friday", want: date(2016, time.March, 25, 23, 59)},
		{in: "wednesday", want: date(2016, time.March, 23, 23, 59)},
		{in: "next wednesday", want: date(2016, time.March, 30, 23, 59)},
		{in: "3 mar 2016", want: date(2016, time.March, 3, 23, 59)},
		{in: "april 1", want: date(2016, time.April, 1, 23, 59)},
		{in: "2016-04-01 9.15am", want: date(2016, time.April, 1, 9, 15)},
		{in: "23/3/16 11:30am", want: date(2016, time.March, 23, 11, 30)},
		{in: "1/1/2017", want: date(2017, time.January, 1, 23, 59)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSingle(tc.in, reference)
			if err != nil {
				t.Fatalf("ParseSingle(%q): %v", tc.in, err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParseSingle(%q) = %v, want %v", tc.in, got, tc.want)
			}
			if !IsDateTime(tc.in) {
				t.Fatalf("IsDateTime(%q) disagrees with ParseSingle", tc.in)
			}
		})
	}
}

func TestParseSingleRollsBareTimes(t *testing.T) {
	t.Parallel()

	now := reference
	earlier, err := ParseSingle("9am", now)
	if err != nil {
		t.Fatalf("ParseSingle: %v", err)
	}
	if earlier.Day() != now.Day()+1 {
		t.Fatalf("a passed time should roll to tomorrow, got %v", earlier)
	}
	later, err := ParseSingle("3pm", now)
	if err != nil {
		t.Fatalf("ParseSingle: %v", err)
	}
	if later.Day() != now.Day() {
		t.Fatalf("a future time should stay today, got %v", later)
	}
}

func TestParseSingleRejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"abc", "31/2", "25:00", "13pm", "next month", "2 weeks"} {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseSingle(in, reference); !errors.Is(err, ErrInvalidDateTime) {
				t.Fatalf("ParseSingle(%q) error = %v, want ErrInvalidDateTime", in, err)
			}
			if IsDateTime(in) {
				t.Fatalf("IsDateTime(%q) should be false", in)
			}
		})
	}
}

func TestParseDouble(t *testing.T) {
	t.Parallel()

	cases := []struct {
		start, end string
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{start: "23/3/16 11:30am", end: "24/3/16 11.40pm", wantStart: date(2016, time.March, 23, 11, 30), wantEnd: date(2016, time.March, 24, 23, 40)},
		{start: "23/3/16 11:30am", end: "23/3/16", wantStart: date(2016, time.March, 23, 11, 30), wantEnd: date(2016, time.March, 23, 12, 30)},
		{start: "23/3/16 11:30am", end: "24/3/16", wantStart: date(2016, time.March, 23, 11, 30), wantEnd: date(2016, time.March, 24, 11, 30)},
		{start: "23/3/16 11:30am", end: "1300", wantStart: date(2016, time.March, 23, 11, 30), wantEnd: date(2016, time.March, 23, 13, 0)},
		{start: "23/3/16 11:30am", end: "1100", wantStart: date(2016, time.March, 23, 11, 30), wantEnd: date(2016, time.March, 24, 11, 0)},
		{start: "23/3/16 11:30am", end: "", wantStart: date(2016, time.March, 23, 11, 30), wantEnd: date(2016, time.March, 23, 12, 30)},
		{start: "23/3/16 11:59pm", end: "", wantStart: date(2016, time.March, 23, 23, 59), wantEnd: date(2016, time.March, 24, 0, 59)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.start+" to "+tc.end, func(t *testing.T) {
			t.Parallel()
			start, end, err := ParseDouble(tc.start, tc.end, reference)
			if err != nil {
				t.Fatalf("ParseDouble: %v", err)
			}
			if !start.Equal(tc.wantStart) || !end.Equal(tc.wantEnd) {
				t.Fatalf("ParseDouble = %v - %v, want %v - %v", start, end, tc.wantStart, tc.wantEnd)
			}
		})
	}

	if _, _, err := ParseDouble("tomorrow 9am", "soonish", reference); !errors.Is(err, ErrInvalidDateTime) {
		t.Fatalf("invalid end should fail, got %v", err)
	}
}
