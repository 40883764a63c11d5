package timeutil

import (
	"errors"
	"testing"
	"time"
)

// TestResolveZone_Valid verifies that real IANA identifiers resolve.
func TestResolveZone_Valid(t *testing.T) {
	for _, id := range []string{"UTC", "America/Toronto", "Asia/Seoul"} {
		loc, err := ResolveZone(id)
		if err != nil {
			t.Fatalf("ResolveZone(%q): %v", id, err)
		}
		if loc.String() != id {
			t.Errorf("ResolveZone(%q) = %v", id, loc)
		}
	}
}

// TestResolveZone_Invalid verifies the UnsupportedTimezone failure mode.
func TestResolveZone_Invalid(t *testing.T) {
	for _, id := range []string{"", "  ", "Mars/Phobos", "not a zone"} {
		if _, err := ResolveZone(id); !errors.Is(err, ErrUnsupportedTimezone) {
			t.Errorf("ResolveZone(%q): want ErrUnsupportedTimezone, got %v", id, err)
		}
	}
}

// TestParseTimestamp_TrailingZIsWallClock pins the inherited quirk: a
// trailing "Z" means wall-clock time in the resolver's zone, not UTC.
func TestParseTimestamp_TrailingZIsWallClock(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatal(err)
	}
	r := Resolver{WallClock: seoul}

	got, ok := r.ParseTimestamp("2025-10-15T23:59:00Z")
	if !ok {
		t.Fatal("expected timestamp to parse")
	}
	want := time.Date(2025, 10, 15, 23, 59, 0, 0, seoul).UTC()
	if !got.Equal(want) {
		t.Errorf("got %v, want %v (wall clock in Asia/Seoul)", got, want)
	}
	// A UTC reading would be 23:59Z exactly; make sure that is NOT what
	// we produced (Seoul is UTC+9, so they differ).
	utcReading := time.Date(2025, 10, 15, 23, 59, 0, 0, time.UTC)
	if got.Equal(utcReading) {
		t.Error("trailing Z was interpreted as UTC; the wall-clock quirk must be preserved")
	}
}

// TestParseTimestamp_OffsetForm verifies plain RFC3339 with an explicit
// offset is honored as-is.
func TestParseTimestamp_OffsetForm(t *testing.T) {
	r := Resolver{WallClock: time.UTC}
	got, ok := r.ParseTimestamp("2025-10-15T10:00:00+02:00")
	if !ok {
		t.Fatal("expected timestamp to parse")
	}
	want := time.Date(2025, 10, 15, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestParseTimestamp_Garbage verifies parse failures report absence, not
// errors.
func TestParseTimestamp_Garbage(t *testing.T) {
	r := Resolver{WallClock: time.UTC}
	for _, raw := range []string{"", "   ", "yesterday", "2025-13-99T99:99:99Z", "2025-10-15"} {
		if _, ok := r.ParseTimestamp(raw); ok {
			t.Errorf("ParseTimestamp(%q): expected absence", raw)
		}
	}
}

func TestFormatInstant(t *testing.T) {
	seoul, _ := time.LoadLocation("Asia/Seoul")
	in := time.Date(2025, 10, 16, 8, 59, 0, 0, seoul)
	if got := FormatInstant(in); got != "2025-10-15T23:59:00Z" {
		t.Errorf("FormatInstant = %q", got)
	}
}

func TestFormatLocal(t *testing.T) {
	seoul, _ := time.LoadLocation("Asia/Seoul")
	in := time.Date(2025, 10, 15, 23, 59, 0, 0, time.UTC)
	if got := FormatLocal(in, seoul); got != "2025-10-16 08:59" {
		t.Errorf("FormatLocal = %q", got)
	}
	if got := FormatLocal(in, nil); got != "2025-10-15 23:59" {
		t.Errorf("FormatLocal(nil zone) = %q", got)
	}
}
