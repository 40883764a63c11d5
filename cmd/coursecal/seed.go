package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	applog "github.com/HD-Brody/team-project-sub000/internal/log"
	"github.com/HD-Brody/team-project-sub000/internal/model"
	"github.com/HD-Brody/team-project-sub000/internal/store/sqlite"
)

// seedFile is the YAML document accepted by -init -seed. Timestamps are
// the same raw text the stores hold; they are not parsed at load time.
type seedFile struct {
	Courses        []seedCourse        `yaml:"courses"`
	Assessments    []seedAssessment    `yaml:"assessments"`
	ScheduleEvents []seedScheduleEvent `yaml:"schedule_events"`
}

type seedCourse struct {
	ID     string `yaml:"id"`
	UserID string `yaml:"user_id"`
	Name   string `yaml:"name"`
}

type seedAssessment struct {
	ID              string   `yaml:"id"`
	CourseID        string   `yaml:"course_id"`
	UserID          string   `yaml:"user_id"`
	Title           string   `yaml:"title"`
	StartsAt        string   `yaml:"starts_at"`
	EndsAt          string   `yaml:"ends_at"`
	DurationMinutes int      `yaml:"duration_minutes"`
	Weight          *float64 `yaml:"weight"`
	Location        string   `yaml:"location"`
	Notes           string   `yaml:"notes"`
}

type seedScheduleEvent struct {
	ID         string `yaml:"id"`
	UserID     string `yaml:"user_id"`
	Title      string `yaml:"title"`
	StartsAt   string `yaml:"starts_at"`
	EndsAt     string `yaml:"ends_at"`
	Location   string `yaml:"location"`
	Notes      string `yaml:"notes"`
	Recurrence string `yaml:"recurrence"`
}

func (a seedAssessment) record() model.AssessmentRecord {
	return model.AssessmentRecord{
		ID:              a.ID,
		CourseID:        a.CourseID,
		UserID:          a.UserID,
		Title:           a.Title,
		StartsAt:        a.StartsAt,
		EndsAt:          a.EndsAt,
		DurationMinutes: a.DurationMinutes,
		Weight:          a.Weight,
		Location:        a.Location,
		Notes:           a.Notes,
	}
}

func (e seedScheduleEvent) record() model.ScheduleEventRecord {
	return model.ScheduleEventRecord{
		ID:         e.ID,
		UserID:     e.UserID,
		Title:      e.Title,
		StartsAt:   e.StartsAt,
		EndsAt:     e.EndsAt,
		Location:   e.Location,
		Notes:      e.Notes,
		Recurrence: e.Recurrence,
	}
}

// runInit finishes the -init mode. The schema already exists at this
// point because opening the store migrates it; all that is left is
// loading the optional seed file.
func runInit(ctx context.Context, store *sqlite.Store, seedPath string) error {
	if seedPath == "" {
		return nil
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	return applySeed(ctx, store, sf)
}

// applySeed upserts every seed record, so re-running -init with the
// same file is safe.
func applySeed(ctx context.Context, store *sqlite.Store, sf seedFile) error {
	for _, c := range sf.Courses {
		if err := store.SaveCourse(ctx, c.ID, c.UserID, c.Name); err != nil {
			return fmt.Errorf("seed course %q: %w", c.ID, err)
		}
	}
	for _, a := range sf.Assessments {
		if err := store.SaveAssessment(ctx, a.record()); err != nil {
			return fmt.Errorf("seed assessment %q: %w", a.ID, err)
		}
	}
	for _, e := range sf.ScheduleEvents {
		if err := store.SaveScheduleEvent(ctx, e.record()); err != nil {
			return fmt.Errorf("seed schedule event %q: %w", e.ID, err)
		}
	}
	applog.Info("seed loaded",
		"courses", len(sf.Courses),
		"assessments", len(sf.Assessments),
		"schedule_events", len(sf.ScheduleEvents),
	)
	return nil
}
