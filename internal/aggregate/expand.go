package aggregate

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/HD-Brody/team-project-sub000/internal/log"
	"github.com/HD-Brody/team-project-sub000/internal/model"
	"github.com/HD-Brody/team-project-sub000/internal/timeutil"
)

// expandRecurrence turns a recurring schedule-event record into concrete
// occurrences within the export window. Unbounded window sides default to
// [first occurrence, first occurrence + one year]. The second return value
// reports whether the per-event cap was hit.
//
// Occurrence IDs are "schedule-<record id>-<start RFC3339>" so two
// occurrences of the same record never collide during deduplication.
func expandRecurrence(rec model.ScheduleEventRecord, start, end time.Time, windowStart, windowEnd time.Time) ([]model.CalendarEvent, bool) {
	rule, err := rrule.StrToRRule(rec.Recurrence)
	if err != nil {
		// Unparsable recurrence degrades to the base occurrence; the
		// record itself is still placeable on the timeline.
		log.Debug("recurrence unparsable, using base occurrence", "event", rec.ID, "rrule", rec.Recurrence)
		if !inWindow(start, windowStart, windowEnd) {
			return nil, false
		}
		return []model.CalendarEvent{scheduleOccurrence(rec, "schedule-"+rec.ID, start, end)}, false
	}
	rule.DTStart(start)

	var set rrule.Set
	set.RRule(rule)

	lo := windowStart
	if lo.IsZero() {
		lo = start
	}
	hi := windowEnd
	if hi.IsZero() {
		hi = start.Add(defaultRecurrenceHorizon)
	}

	times := set.Between(lo, hi, true)
	capped := false
	if len(times) > maxOccurrencesPerEvent {
		times = times[:maxOccurrencesPerEvent]
		capped = true
	}

	duration := end.Sub(start)
	out := make([]model.CalendarEvent, 0, len(times))
	for _, occStart := range times {
		occStart = occStart.UTC()
		id := "schedule-" + rec.ID + "-" + timeutil.FormatInstant(occStart)
		out = append(out, scheduleOccurrence(rec, id, occStart, occStart.Add(duration)))
	}
	return out, capped
}
