// Package project derives calendar events from assessment records.
package project

import (
	"fmt"
	"time"

	"github.com/HD-Brody/team-project-sub000/internal/model"
	"github.com/HD-Brody/team-project-sub000/internal/timeutil"
)

const (
	// defaultDuration is assumed when a record has a start but neither an
	// end nor an explicit duration.
	defaultDuration = time.Hour

	// dueLeadTime is how far before a due date the projected event
	// starts when the record only carries a due date.
	dueLeadTime = 30 * time.Minute
)

// SkipReason says why a record contributed no event.
type SkipReason string

const (
	// SkipNoTimestamp: neither startsAt nor endsAt resolved to an
	// instant, so the record cannot be placed on a timeline.
	SkipNoTimestamp SkipReason = "no usable timestamp"
)

// Projection is the typed outcome of projecting one record. Records that
// cannot be placed on the timeline are skipped with a reason; projection
// itself never fails the batch.
type Projection struct {
	Event   model.CalendarEvent
	Skipped bool
	Reason  SkipReason
}

// Projector turns assessment records into calendar events.
type Projector struct {
	Times timeutil.Resolver
}

// Project picks the event's start and end by priority:
//
//  1. no resolvable timestamp at all -> skipped
//  2. start resolves -> end is endsAt, else start+duration, else start+1h
//  3. only the due date resolves -> the event covers the 30 minutes
//     leading up to it
//
// When the record carries a weight, a "Weight: NN.NN%" line is appended to
// the notes; caller-supplied notes are never overwritten.
func (p Projector) Project(rec model.AssessmentRecord) Projection {
	start, okStart := p.Times.ParseTimestamp(rec.StartsAt)
	end, okEnd := p.Times.ParseTimestamp(rec.EndsAt)
	if !okStart && !okEnd {
		return Projection{Skipped: true, Reason: SkipNoTimestamp}
	}

	var s, e time.Time
	if okStart {
		s = start
		switch {
		case okEnd && !end.Before(start):
			e = end
		case rec.DurationMinutes > 0:
			e = start.Add(time.Duration(rec.DurationMinutes) * time.Minute)
		default:
			e = start.Add(defaultDuration)
		}
	} else {
		e = end
		s = end.Add(-dueLeadTime)
	}

	return Projection{Event: model.CalendarEvent{
		ID:       "assessment-" + rec.ID,
		UserID:   rec.UserID,
		Title:    rec.Title,
		StartsAt: s,
		EndsAt:   e,
		RawStart: rec.StartsAt,
		RawEnd:   rec.EndsAt,
		Location: rec.Location,
		Notes:    enrichNotes(rec.Notes, rec.Weight),
		Source:   model.SourceAssessment,
		SourceID: rec.ID,
	}}
}

func enrichNotes(notes string, weight *float64) string {
	if weight == nil {
		return notes
	}
	line := fmt.Sprintf("Weight: %.2f%%", *weight*100)
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}
