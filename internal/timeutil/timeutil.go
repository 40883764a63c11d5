// Package timeutil resolves export timezones and parses the heterogeneous
// timestamp text found in ingested course records.
package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnsupportedTimezone is returned by ResolveZone for identifiers that are
// not recognized IANA zones. It is the only timestamp-related failure that
// aborts an export.
var ErrUnsupportedTimezone = errors.New("unsupported timezone")

const (
	// PreviewLayout is the zoned human-readable form used by previews.
	PreviewLayout = "2006-01-02 15:04"

	wallClockLayout = "2006-01-02T15:04:05"
)

// ResolveZone maps an IANA identifier to a location. Empty identifiers are
// rejected rather than silently becoming UTC.
func ResolveZone(id string) (*time.Location, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrUnsupportedTimezone)
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTimezone, id)
	}
	return loc, nil
}

// Resolver parses raw record timestamps into UTC instants.
//
// A trailing "Z" is NOT treated as UTC: the suffix is stripped and the rest
// is read as wall-clock time in WallClock. The syllabus ingestion upstream
// has always written due dates this way, and every stored record depends on
// it, so the behavior is kept bit-for-bit even though it deviates from
// ISO-8601. Do not "fix" this without migrating stored data.
type Resolver struct {
	// WallClock is the location used for trailing-"Z" timestamps.
	// Nil means time.Local.
	WallClock *time.Location
}

func (r Resolver) wallClock() *time.Location {
	if r.WallClock != nil {
		return r.WallClock
	}
	return time.Local
}

// ParseTimestamp parses raw timestamp text. The second return value is false
// when the text cannot be placed on a timeline; callers treat that as
// "timestamp absent", never as an error.
func (r Resolver) ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if strings.HasSuffix(raw, "Z") {
		t, err := time.ParseInLocation(wallClockLayout, strings.TrimSuffix(raw, "Z"), r.wallClock())
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// FormatInstant renders the canonical UTC form used for round-tripping
// internal event timestamps.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatLocal renders a human-readable zoned timestamp for previews.
func FormatLocal(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(PreviewLayout)
}
