// Package export orchestrates the calendar export pipeline: zone
// resolution, event aggregation and artifact rendering. It is the single
// boundary that converts internal failures into one reportable error for the
// presentation layer.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HD-Brody/team-project-sub000/internal/aggregate"
	"github.com/HD-Brody/team-project-sub000/internal/log"
	"github.com/HD-Brody/team-project-sub000/internal/model"
	"github.com/HD-Brody/team-project-sub000/internal/preview"
	"github.com/HD-Brody/team-project-sub000/internal/render"
	"github.com/HD-Brody/team-project-sub000/internal/timeutil"
)

// ErrNoExportableEvents: the window/source/caller combination yielded zero
// events. Reported, never a crash.
var ErrNoExportableEvents = errors.New("no exportable events found for this request")

// Phase tracks where in the pipeline an export call is. It shows up on
// errors and in logs.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseResolving   Phase = "resolving"
	PhaseAggregating Phase = "aggregating"
	PhaseRendering   Phase = "rendering"
	PhaseSucceeded   Phase = "succeeded"
	PhaseFailed      Phase = "failed"
)

// Error is the single structured failure the orchestrator reports.
type Error struct {
	Phase Phase
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %s: %s", e.Phase, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Exporter is the entry point exposed to the presentation layer.
type Exporter struct {
	Aggregator aggregate.Aggregator
	ProductID  string
}

// ExportCalendar resolves the zone, aggregates events and renders the
// artifact. All failures, including panics anywhere in the pipeline, come
// back as an *Error; nothing else crosses this boundary.
func (e *Exporter) ExportCalendar(ctx context.Context, req model.ExportRequest) (resp *model.ExportResponse, err error) {
	phase := PhaseIdle
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = &Error{Phase: phase, Err: fmt.Errorf("internal error: %v", r)}
			log.Error("export pipeline panicked", err, "user", req.UserID)
		}
	}()

	phase = PhaseResolving
	loc, zerr := timeutil.ResolveZone(req.TimezoneID)
	if zerr != nil {
		return nil, e.fail(phase, zerr, req)
	}

	phase = PhaseAggregating
	events, aerr := e.Aggregator.ResolveEvents(ctx, req)
	if aerr != nil {
		return nil, e.fail(phase, aerr, req)
	}
	if len(events) == 0 {
		return nil, e.fail(phase, ErrNoExportableEvents, req)
	}

	phase = PhaseRendering
	artifact, rerr := render.Render(e.ProductID, loc, req.FilenameHint, events)
	if rerr != nil {
		return nil, e.fail(phase, rerr, req)
	}

	phase = PhaseSucceeded
	log.Info("calendar exported", "user", req.UserID, "events", len(events), "filename", artifact.Filename)
	return &model.ExportResponse{
		Artifact:    artifact,
		EventCount:  len(events),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// GeneratePreviewTexts resolves events for the request and renders them as
// text lines, filtered by type. Independent of the export path: an empty
// result is simply an empty list.
func (e *Exporter) GeneratePreviewTexts(ctx context.Context, req model.ExportRequest, typ model.PreviewType) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			err = &Error{Phase: PhaseFailed, Err: fmt.Errorf("internal error: %v", r)}
			log.Error("preview pipeline panicked", err, "user", req.UserID)
		}
	}()

	loc, zerr := timeutil.ResolveZone(req.TimezoneID)
	if zerr != nil {
		return nil, &Error{Phase: PhaseResolving, Err: zerr}
	}
	events, aerr := e.Aggregator.ResolveEvents(ctx, req)
	if aerr != nil {
		return nil, &Error{Phase: PhaseAggregating, Err: aerr}
	}
	return preview.Lines(preview.Filter(events, typ), loc), nil
}

func (e *Exporter) fail(phase Phase, cause error, req model.ExportRequest) *Error {
	ferr := &Error{Phase: phase, Err: cause}
	log.Error("export failed", ferr, "user", req.UserID, "timezone", req.TimezoneID)
	return ferr
}
