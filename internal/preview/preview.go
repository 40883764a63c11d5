// Package preview renders one-line human-readable event summaries.
package preview

import (
	"fmt"
	"strings"
	"time"

	"github.com/HD-Brody/team-project-sub000/internal/model"
	"github.com/HD-Brody/team-project-sub000/internal/timeutil"
)

// Filter partitions events by preview type. ASSESSMENT matches the
// assessment source tag or any id carrying the "assessment-" prefix;
// SCHEDULE_EVENT matches everything else; ALL passes the set through.
func Filter(events []model.CalendarEvent, typ model.PreviewType) []model.CalendarEvent {
	if typ == model.PreviewAll || typ == "" {
		return events
	}
	out := make([]model.CalendarEvent, 0, len(events))
	for _, ev := range events {
		if isAssessment(ev) == (typ == model.PreviewAssessment) {
			out = append(out, ev)
		}
	}
	return out
}

// Lines renders one line per event:
//
//	<start> - <end> | <title> [@ <location>] [<SOURCE>]
//
// Timestamps use "yyyy-MM-dd HH:mm" in the given zone. An event whose
// instant never resolved falls back to its raw stored timestamp text; a bad
// timestamp never fails the preview.
func Lines(events []model.CalendarEvent, loc *time.Location) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, line(ev, loc))
	}
	return out
}

func line(ev model.CalendarEvent, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s | %s", stampText(ev.StartsAt, ev.RawStart, loc), stampText(ev.EndsAt, ev.RawEnd, loc), ev.Title)
	if ev.Location != "" {
		fmt.Fprintf(&b, " @ %s", ev.Location)
	}
	fmt.Fprintf(&b, " [%s]", ev.Source)
	return b.String()
}

func stampText(t time.Time, raw string, loc *time.Location) string {
	if t.IsZero() {
		return raw
	}
	return timeutil.FormatLocal(t, loc)
}

func isAssessment(ev model.CalendarEvent) bool {
	return ev.Source == model.SourceAssessment || strings.HasPrefix(ev.ID, "assessment-")
}
