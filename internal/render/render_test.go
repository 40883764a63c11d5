package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/HD-Brody/team-project-sub000/internal/model"
)

const testProductID = "-//coursecal//calendar export//EN"

func sampleEvents() []model.CalendarEvent {
	start := time.Date(2025, 10, 15, 13, 0, 0, 0, time.UTC)
	return []model.CalendarEvent{
		{
			ID:       "assessment-a1",
			Title:    "Final exam",
			StartsAt: start,
			EndsAt:   start.Add(2 * time.Hour),
			Location: "EX 100",
			Notes:    "Closed book\nWeight: 40.00%",
			Source:   model.SourceAssessment,
		},
		{
			ID:       "schedule-s1",
			Title:    "Lecture",
			StartsAt: start.Add(24 * time.Hour),
			EndsAt:   start.Add(25 * time.Hour),
			Source:   model.SourceScheduleEvent,
		},
	}
}

// TestRender_EmptySetRefused: rendering zero events is disallowed.
func TestRender_EmptySetRefused(t *testing.T) {
	if _, err := Render(testProductID, time.UTC, "x", nil); !errors.Is(err, ErrEmptyEventSet) {
		t.Errorf("want ErrEmptyEventSet, got %v", err)
	}
}

// TestRender_RoundTrip re-parses the artifact and checks title, location and
// description survive.
func TestRender_RoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Fatal(err)
	}
	artifact, err := Render(testProductID, loc, "My Courses", sampleEvents())
	if err != nil {
		t.Fatal(err)
	}
	if artifact.ContentType != "text/calendar" {
		t.Errorf("content type = %q", artifact.ContentType)
	}
	if artifact.Filename != "my_courses.ics" {
		t.Errorf("filename = %q", artifact.Filename)
	}

	parsed, err := ics.ParseCalendar(bytes.NewReader(artifact.Payload))
	if err != nil {
		t.Fatalf("artifact does not re-parse: %v", err)
	}
	events := parsed.Events()
	if len(events) != 2 {
		t.Fatalf("re-parsed %d events", len(events))
	}

	byUID := make(map[string]*ics.VEvent)
	for _, ve := range events {
		byUID[ve.GetProperty(ics.ComponentPropertyUniqueId).Value] = ve
	}
	exam, ok := byUID["assessment-a1"]
	if !ok {
		t.Fatal("missing UID assessment-a1")
	}
	if got := exam.GetProperty(ics.ComponentPropertySummary).Value; got != "Final exam" {
		t.Errorf("summary = %q", got)
	}
	if got := exam.GetProperty(ics.ComponentPropertyLocation).Value; got != "EX 100" {
		t.Errorf("location = %q", got)
	}
	desc := exam.GetProperty(ics.ComponentPropertyDescription).Value
	if !strings.Contains(desc, "Weight: 40.00%") {
		t.Errorf("description = %q", desc)
	}
	if got := exam.GetProperty(ics.ComponentPropertyCategories).Value; got != "ASSESSMENT" {
		t.Errorf("categories = %q", got)
	}
}

// TestRender_ZonedTimestamps: non-UTC zones carry TZID parameters and local
// wall times; the calendar block names the zone.
func TestRender_ZonedTimestamps(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatal(err)
	}
	artifact, err := Render(testProductID, loc, "feed", sampleEvents()[:1])
	if err != nil {
		t.Fatal(err)
	}
	text := string(artifact.Payload)
	if !strings.Contains(text, "X-WR-TIMEZONE:Asia/Seoul") {
		t.Error("missing X-WR-TIMEZONE for requested zone")
	}
	// 13:00 UTC renders as 22:00 in Seoul.
	if !strings.Contains(text, "DTSTART;TZID=Asia/Seoul:20251015T220000") {
		t.Errorf("missing zoned DTSTART, payload:\n%s", text)
	}
}

// TestRender_NilZoneFallsBackToUTC mirrors the renderer-level timezone
// fallback.
func TestRender_NilZoneFallsBackToUTC(t *testing.T) {
	artifact, err := Render(testProductID, nil, "feed", sampleEvents()[:1])
	if err != nil {
		t.Fatal(err)
	}
	text := string(artifact.Payload)
	if !strings.Contains(text, "X-WR-TIMEZONE:UTC") {
		t.Error("nil zone should fall back to UTC")
	}
	if !strings.Contains(text, "DTSTART:20251015T130000Z") {
		t.Errorf("UTC DTSTART missing, payload:\n%s", text)
	}
}

func TestFilename(t *testing.T) {
	cases := []struct{ hint, want string }{
		{"My Courses", "my_courses.ics"},
		{"CSC301 (Fall)", "csc301__fall_.ics"},
		{"", "calendar.ics"},
		{"already_ok", "already_ok.ics"},
	}
	for _, tc := range cases {
		if got := Filename(tc.hint); got != tc.want {
			t.Errorf("Filename(%q) = %q, want %q", tc.hint, got, tc.want)
		}
	}
}
