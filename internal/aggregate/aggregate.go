// Package aggregate merges calendar events from the caller, the assessment
// store and the schedule-event store into one deduplicated, window-filtered
// set.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/HD-Brody/team-project-sub000/internal/log"
	"github.com/HD-Brody/team-project-sub000/internal/model"
	"github.com/HD-Brody/team-project-sub000/internal/project"
	"github.com/HD-Brody/team-project-sub000/internal/timeutil"
)

// SourceProvider is the record-store capability the aggregator consumes.
// Implementations are simple synchronous reads; the aggregator never writes.
type SourceProvider interface {
	FindAssessmentsByCourseID(ctx context.Context, courseID string) ([]model.AssessmentRecord, error)
	FindScheduleEventsByUserID(ctx context.Context, userID string) ([]model.ScheduleEventRecord, error)
}

// CourseLister is an optional SourceProvider capability. When a request
// names no courses, the aggregator uses it to expand "all of the user's
// courses"; providers without it contribute no assessments in that case.
type CourseLister interface {
	ListCourseIDs(ctx context.Context, userID string) ([]string, error)
}

const (
	// defaultRecurrenceHorizon bounds recurrence expansion when the
	// export window is open-ended.
	defaultRecurrenceHorizon = 365 * 24 * time.Hour

	// maxOccurrencesPerEvent caps a single recurring event's expansion.
	maxOccurrencesPerEvent = 1000

	defaultScheduleDuration = time.Hour
)

// Aggregator resolves an export request into a deduplicated event list.
type Aggregator struct {
	Provider  SourceProvider
	Projector project.Projector
	Times     timeutil.Resolver
}

// ResolveEvents produces the event set for one request.
//
// When the request carries explicit events they are used verbatim (no store
// lookup); otherwise assessments are loaded per course and filtered by the
// window against their END instant, schedule events are loaded per user and
// filtered against their START instant, and the two lists are merged.
//
// Merge order is fixed: caller-supplied, then assessment-derived, then
// schedule-event-derived. The first event seen for an ID wins; later
// duplicates are discarded silently.
func (a Aggregator) ResolveEvents(ctx context.Context, req model.ExportRequest) ([]model.CalendarEvent, error) {
	if len(req.Events) > 0 {
		return MergeByID(req.Events), nil
	}

	assessed, err := a.assessmentEvents(ctx, req)
	if err != nil {
		return nil, err
	}
	scheduled, err := a.scheduleEvents(ctx, req)
	if err != nil {
		return nil, err
	}
	return MergeByID(assessed, scheduled), nil
}

// MergeByID unions event lists preserving first-seen order; a later event
// with an already-seen ID is dropped. List order is the source precedence.
func MergeByID(lists ...[]model.CalendarEvent) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, ev := range list {
			if _, dup := seen[ev.ID]; dup {
				continue
			}
			seen[ev.ID] = struct{}{}
			out = append(out, ev)
		}
	}
	return out
}

func (a Aggregator) assessmentEvents(ctx context.Context, req model.ExportRequest) ([]model.CalendarEvent, error) {
	courseIDs := req.CourseIDs
	if len(courseIDs) == 0 {
		lister, ok := a.Provider.(CourseLister)
		if !ok {
			return nil, nil
		}
		ids, err := lister.ListCourseIDs(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("list courses for user %s: %w", req.UserID, err)
		}
		courseIDs = ids
	}

	out := make([]model.CalendarEvent, 0)
	for _, courseID := range courseIDs {
		records, err := a.Provider.FindAssessmentsByCourseID(ctx, courseID)
		if err != nil {
			return nil, fmt.Errorf("load assessments for course %s: %w", courseID, err)
		}
		for _, rec := range records {
			pr := a.Projector.Project(rec)
			if pr.Skipped {
				log.Debug("assessment skipped", "assessment", rec.ID, "reason", string(pr.Reason))
				continue
			}
			if !inWindow(pr.Event.EndsAt, req.WindowStart, req.WindowEnd) {
				continue
			}
			out = append(out, pr.Event)
		}
	}
	return out, nil
}

func (a Aggregator) scheduleEvents(ctx context.Context, req model.ExportRequest) ([]model.CalendarEvent, error) {
	records, err := a.Provider.FindScheduleEventsByUserID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load schedule events for user %s: %w", req.UserID, err)
	}

	out := make([]model.CalendarEvent, 0)
	for _, rec := range records {
		start, okStart := a.Times.ParseTimestamp(rec.StartsAt)
		if !okStart {
			log.Debug("schedule event skipped", "event", rec.ID, "reason", "no usable start")
			continue
		}
		end, okEnd := a.Times.ParseTimestamp(rec.EndsAt)
		if !okEnd || end.Before(start) {
			end = start.Add(defaultScheduleDuration)
		}

		if rec.Recurrence == "" {
			if !inWindow(start, req.WindowStart, req.WindowEnd) {
				continue
			}
			out = append(out, scheduleOccurrence(rec, "schedule-"+rec.ID, start, end))
			continue
		}

		occurrences, capped := expandRecurrence(rec, start, end, req.WindowStart, req.WindowEnd)
		if capped {
			log.Error("recurrence expansion truncated", fmt.Errorf("cap of %d occurrences reached", maxOccurrencesPerEvent), "event", rec.ID)
		}
		out = append(out, occurrences...)
	}
	return out, nil
}

// inWindow is inclusive on both ends; a zero bound is unbounded.
func inWindow(t, lo, hi time.Time) bool {
	if !lo.IsZero() && t.Before(lo) {
		return false
	}
	if !hi.IsZero() && t.After(hi) {
		return false
	}
	return true
}

func scheduleOccurrence(rec model.ScheduleEventRecord, id string, start, end time.Time) model.CalendarEvent {
	return model.CalendarEvent{
		ID:       id,
		UserID:   rec.UserID,
		Title:    rec.Title,
		StartsAt: start,
		EndsAt:   end,
		RawStart: rec.StartsAt,
		RawEnd:   rec.EndsAt,
		Location: rec.Location,
		Notes:    rec.Notes,
		Source:   model.SourceScheduleEvent,
		SourceID: rec.ID,
	}
}
