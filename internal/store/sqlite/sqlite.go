// Package sqlite is the record-store adapter backing the aggregator's
// SourceProvider interface. Timestamps are stored as the raw text the
// ingestion produced; interpreting them is the pipeline's job.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // CGO-free driver

	"github.com/HD-Brody/team-project-sub000/internal/log"
	"github.com/HD-Brody/team-project-sub000/internal/model"
)

// Store wraps an explicit database handle. There is no package-level
// connection; every Store is constructed around the handle it uses.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs the migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	// Single writer avoids sqlite lock contention.
	db.SetMaxOpenConns(1)

	s := New(db)
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing handle without migrating.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the tables this store reads and writes.
func (s *Store) Migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS courses (
		id      TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name    TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS assessments (
		id               TEXT PRIMARY KEY,
		course_id        TEXT NOT NULL,
		user_id          TEXT NOT NULL,
		title            TEXT NOT NULL,
		starts_at        TEXT,    -- raw timestamp text as ingested
		ends_at          TEXT,    -- raw due-date text as ingested
		duration_minutes INTEGER, -- NULL when the syllabus gave none
		weight           REAL,    -- fraction of final grade, NULL when unknown
		location         TEXT,
		notes            TEXT
	);
	CREATE TABLE IF NOT EXISTS schedule_events (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		title      TEXT NOT NULL,
		starts_at  TEXT,
		ends_at    TEXT,
		location   TEXT,
		notes      TEXT,
		recurrence TEXT -- RRULE text, empty for one-off events
	);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Debug("store schema ready")
	return nil
}

// FindAssessmentsByCourseID returns every assessment row for a course.
func (s *Store) FindAssessmentsByCourseID(ctx context.Context, courseID string) ([]model.AssessmentRecord, error) {
	const q = `SELECT id, course_id, user_id, title, starts_at, ends_at, duration_minutes, weight, location, notes
		FROM assessments WHERE course_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q, courseID)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	out := make([]model.AssessmentRecord, 0)
	for rows.Next() {
		var rec model.AssessmentRecord
		var startsAt, endsAt, location, notes sql.NullString
		var duration sql.NullInt64
		var weight sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.CourseID, &rec.UserID, &rec.Title,
			&startsAt, &endsAt, &duration, &weight, &location, &notes); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		rec.StartsAt = startsAt.String
		rec.EndsAt = endsAt.String
		rec.DurationMinutes = int(duration.Int64)
		if weight.Valid {
			w := weight.Float64
			rec.Weight = &w
		}
		rec.Location = location.String
		rec.Notes = notes.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// FindScheduleEventsByUserID returns every schedule-event row for a user.
func (s *Store) FindScheduleEventsByUserID(ctx context.Context, userID string) ([]model.ScheduleEventRecord, error) {
	const q = `SELECT id, user_id, title, starts_at, ends_at, location, notes, recurrence
		FROM schedule_events WHERE user_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query schedule events: %w", err)
	}
	defer rows.Close()

	out := make([]model.ScheduleEventRecord, 0)
	for rows.Next() {
		var rec model.ScheduleEventRecord
		var startsAt, endsAt, location, notes, recurrence sql.NullString
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title,
			&startsAt, &endsAt, &location, &notes, &recurrence); err != nil {
			return nil, fmt.Errorf("scan schedule event: %w", err)
		}
		rec.StartsAt = startsAt.String
		rec.EndsAt = endsAt.String
		rec.Location = location.String
		rec.Notes = notes.String
		rec.Recurrence = recurrence.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListCourseIDs implements the aggregator's CourseLister capability, used
// when a request names no courses.
func (s *Store) ListCourseIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM courses WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan course id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SaveCourse upserts a course row.
func (s *Store) SaveCourse(ctx context.Context, id, userID, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, user_id, name) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, name = excluded.name`,
		id, userID, name)
	return err
}

// SaveAssessment upserts an assessment row.
func (s *Store) SaveAssessment(ctx context.Context, rec model.AssessmentRecord) error {
	var weight any
	if rec.Weight != nil {
		weight = *rec.Weight
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, course_id, user_id, title, starts_at, ends_at, duration_minutes, weight, location, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			course_id = excluded.course_id, user_id = excluded.user_id,
			title = excluded.title, starts_at = excluded.starts_at,
			ends_at = excluded.ends_at, duration_minutes = excluded.duration_minutes,
			weight = excluded.weight, location = excluded.location, notes = excluded.notes`,
		rec.ID, rec.CourseID, rec.UserID, rec.Title, rec.StartsAt, rec.EndsAt,
		rec.DurationMinutes, weight, rec.Location, rec.Notes)
	return err
}

// SaveScheduleEvent upserts a schedule-event row.
func (s *Store) SaveScheduleEvent(ctx context.Context, rec model.ScheduleEventRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_events (id, user_id, title, starts_at, ends_at, location, notes, recurrence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id, title = excluded.title,
			starts_at = excluded.starts_at, ends_at = excluded.ends_at,
			location = excluded.location, notes = excluded.notes,
			recurrence = excluded.recurrence`,
		rec.ID, rec.UserID, rec.Title, rec.StartsAt, rec.EndsAt,
		rec.Location, rec.Notes, rec.Recurrence)
	return err
}
