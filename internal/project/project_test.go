package project

import (
	"strings"
	"testing"
	"time"

	"github.com/HD-Brody/team-project-sub000/internal/model"
	"github.com/HD-Brody/team-project-sub000/internal/timeutil"
)

func utcProjector() Projector {
	return Projector{Times: timeutil.Resolver{WallClock: time.UTC}}
}

func f64(v float64) *float64 { return &v }

// TestProject_DueDateOnly covers the common "due date only" case: the event
// spans the 30 minutes before the due date, and the weight line is appended.
func TestProject_DueDateOnly(t *testing.T) {
	p := utcProjector()
	pr := p.Project(model.AssessmentRecord{
		ID:     "a1",
		UserID: "u1",
		Title:  "Midterm report",
		EndsAt: "2025-10-15T23:59:00Z",
		Weight: f64(0.15),
	})
	if pr.Skipped {
		t.Fatalf("unexpected skip: %s", pr.Reason)
	}
	ev := pr.Event
	wantEnd := time.Date(2025, 10, 15, 23, 59, 0, 0, time.UTC)
	wantStart := time.Date(2025, 10, 15, 23, 29, 0, 0, time.UTC)
	if !ev.EndsAt.Equal(wantEnd) || !ev.StartsAt.Equal(wantStart) {
		t.Errorf("span [%v, %v], want [%v, %v]", ev.StartsAt, ev.EndsAt, wantStart, wantEnd)
	}
	if !strings.HasSuffix(ev.Notes, "Weight: 15.00%") {
		t.Errorf("notes = %q, want trailing weight line", ev.Notes)
	}
	if ev.ID != "assessment-a1" || ev.Source != model.SourceAssessment || ev.SourceID != "a1" {
		t.Errorf("identity fields wrong: %+v", ev)
	}
}

// TestProject_StartFallbacks exercises the end-instant priority order when a
// start is present.
func TestProject_StartFallbacks(t *testing.T) {
	p := utcProjector()
	start := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		rec     model.AssessmentRecord
		wantEnd time.Time
	}{
		{
			name:    "explicit end wins",
			rec:     model.AssessmentRecord{ID: "x", StartsAt: "2025-11-01T09:00:00Z", EndsAt: "2025-11-01T11:30:00Z"},
			wantEnd: start.Add(150 * time.Minute),
		},
		{
			name:    "duration when no end",
			rec:     model.AssessmentRecord{ID: "x", StartsAt: "2025-11-01T09:00:00Z", DurationMinutes: 90},
			wantEnd: start.Add(90 * time.Minute),
		},
		{
			name:    "default hour when nothing else",
			rec:     model.AssessmentRecord{ID: "x", StartsAt: "2025-11-01T09:00:00Z"},
			wantEnd: start.Add(time.Hour),
		},
		{
			name:    "end before start treated as absent",
			rec:     model.AssessmentRecord{ID: "x", StartsAt: "2025-11-01T09:00:00Z", EndsAt: "2025-11-01T08:00:00Z", DurationMinutes: 45},
			wantEnd: start.Add(45 * time.Minute),
		},
	}

	for _, tc := range cases {
		pr := p.Project(tc.rec)
		if pr.Skipped {
			t.Errorf("%s: unexpected skip", tc.name)
			continue
		}
		if !pr.Event.StartsAt.Equal(start) {
			t.Errorf("%s: start = %v, want %v", tc.name, pr.Event.StartsAt, start)
		}
		if !pr.Event.EndsAt.Equal(tc.wantEnd) {
			t.Errorf("%s: end = %v, want %v", tc.name, pr.Event.EndsAt, tc.wantEnd)
		}
	}
}

// TestProject_SkipsUnplaceable verifies records with no resolvable timestamp
// are skipped with a reason rather than erroring.
func TestProject_SkipsUnplaceable(t *testing.T) {
	p := utcProjector()
	for _, rec := range []model.AssessmentRecord{
		{ID: "a"},
		{ID: "b", StartsAt: "garbage", EndsAt: "also garbage"},
	} {
		pr := p.Project(rec)
		if !pr.Skipped {
			t.Errorf("record %s: expected skip", rec.ID)
		}
		if pr.Reason != SkipNoTimestamp {
			t.Errorf("record %s: reason = %q", rec.ID, pr.Reason)
		}
	}
}

// TestProject_NotesNeverOverwritten verifies enrichment appends on a new
// line instead of replacing caller notes.
func TestProject_NotesNeverOverwritten(t *testing.T) {
	p := utcProjector()
	pr := p.Project(model.AssessmentRecord{
		ID:     "a2",
		EndsAt: "2025-10-15T23:59:00Z",
		Notes:  "Bring a calculator",
		Weight: f64(0.5),
	})
	if pr.Event.Notes != "Bring a calculator\nWeight: 50.00%" {
		t.Errorf("notes = %q", pr.Event.Notes)
	}

	// No weight: notes pass through untouched.
	pr = p.Project(model.AssessmentRecord{ID: "a3", EndsAt: "2025-10-15T23:59:00Z", Notes: "keep"})
	if pr.Event.Notes != "keep" {
		t.Errorf("notes = %q", pr.Event.Notes)
	}
}
