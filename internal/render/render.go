// Package render serializes a deduplicated event set into an iCalendar
// artifact.
package render

import (
	"errors"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/HD-Brody/team-project-sub000/internal/model"
)

// ErrEmptyEventSet guards against rendering an artifact with zero events;
// the orchestrator reports the no-events case before reaching the renderer.
var ErrEmptyEventSet = errors.New("cannot render an empty event set")

const (
	// Extension is the artifact's canonical filename extension.
	Extension = ".ics"
	// ContentType is the artifact's canonical MIME type.
	ContentType = "text/calendar"

	zonedLayout = "20060102T150405"
	utcLayout   = "20060102T150405Z"
)

// Render serializes events into an iCalendar payload.
//
// Event start/end are written in the requested zone with TZID parameters; a
// nil zone falls back to UTC for the artifact's timezone block. The category
// of each VEVENT is the event's source tag.
func Render(productID string, loc *time.Location, filenameHint string, events []model.CalendarEvent) (model.RenderedArtifact, error) {
	if len(events) == 0 {
		return model.RenderedArtifact{}, ErrEmptyEventSet
	}
	if loc == nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetVersion("2.0")
	cal.SetMethod(ics.MethodPublish)
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRTimezone(loc.String())

	stamp := time.Now().UTC()
	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(stamp)
		setZonedTime(ve, ics.ComponentPropertyDtStart, ev.StartsAt, loc)
		setZonedTime(ve, ics.ComponentPropertyDtEnd, ev.EndsAt, loc)
		ve.SetSummary(ev.Title)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Notes != "" {
			ve.SetDescription(ev.Notes)
		}
		ve.SetProperty(ics.ComponentPropertyCategories, string(ev.Source))
	}

	return model.RenderedArtifact{
		Payload:     []byte(cal.Serialize()),
		Filename:    Filename(filenameHint),
		ContentType: ContentType,
	}, nil
}

// setZonedTime writes a date-time property in the given zone. UTC keeps the
// compact trailing-Z form; any other zone carries a TZID parameter.
func setZonedTime(ve *ics.VEvent, prop ics.ComponentProperty, t time.Time, loc *time.Location) {
	local := t.In(loc)
	if loc == time.UTC {
		ve.SetProperty(prop, local.Format(utcLayout))
		return
	}
	ve.SetProperty(prop, local.Format(zonedLayout), &ics.KeyValues{
		Key:   string(ics.ParameterTzid),
		Value: []string{loc.String()},
	})
}

// Filename lower-cases the hint, replaces every non-alphanumeric character
// with an underscore and appends the canonical extension.
func Filename(hint string) string {
	if hint == "" {
		hint = "calendar"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(hint) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String() + Extension
}
