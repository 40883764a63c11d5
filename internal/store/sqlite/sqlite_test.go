package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/HD-Brody/team-project-sub000/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "coursecal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AssessmentRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	w := 0.15
	in := model.AssessmentRecord{
		ID:              "a1",
		CourseID:        "c1",
		UserID:          "u1",
		Title:           "Midterm report",
		EndsAt:          "2025-10-15T23:59:00Z",
		DurationMinutes: 0,
		Weight:          &w,
		Location:        "BA 1130",
		Notes:           "Submit on Quercus",
	}
	if err := s.SaveAssessment(ctx, in); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindAssessmentsByCourseID(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("rows = %+v", got)
	}
	rec := got[0]
	if rec.Title != in.Title || rec.EndsAt != in.EndsAt || rec.Location != in.Location || rec.Notes != in.Notes {
		t.Errorf("round trip mismatch: %+v", rec)
	}
	if rec.Weight == nil || *rec.Weight != 0.15 {
		t.Errorf("weight = %v", rec.Weight)
	}
	if rec.StartsAt != "" {
		t.Errorf("absent startsAt should stay empty, got %q", rec.StartsAt)
	}

	// Rows for another course stay invisible.
	other, err := s.FindAssessmentsByCourseID(ctx, "c2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("unexpected rows: %+v", other)
	}
}

func TestStore_NilWeightStaysNil(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveAssessment(ctx, model.AssessmentRecord{ID: "a2", CourseID: "c1", UserID: "u1", Title: "Quiz"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.FindAssessmentsByCourseID(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Weight != nil {
		t.Errorf("weight = %v, want nil", got[0].Weight)
	}
}

func TestStore_ScheduleEventsAndCourses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveCourse(ctx, "c1", "u1", "CSC301"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveCourse(ctx, "c2", "u1", "CSC343"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveCourse(ctx, "c3", "u2", "MAT237"); err != nil {
		t.Fatal(err)
	}

	ids, err := s.ListCourseIDs(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "c1" || ids[1] != "c2" {
		t.Errorf("course ids = %v", ids)
	}

	in := model.ScheduleEventRecord{
		ID:         "s1",
		UserID:     "u1",
		Title:      "Weekly lecture",
		StartsAt:   "2025-10-06T09:00:00Z",
		EndsAt:     "2025-10-06T10:00:00Z",
		Location:   "MP 102",
		Recurrence: "FREQ=WEEKLY;COUNT=12",
	}
	if err := s.SaveScheduleEvent(ctx, in); err != nil {
		t.Fatal(err)
	}
	got, err := s.FindScheduleEventsByUserID(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Recurrence != in.Recurrence || got[0].Title != in.Title {
		t.Errorf("rows = %+v", got)
	}
}
