package model

import "time"

// EventSource tags which upstream record type produced a calendar event.
// It is a closed set: preview filtering and artifact categorization rely on
// exact matches.
type EventSource string

const (
	SourceAssessment    EventSource = "ASSESSMENT"
	SourceTask          EventSource = "TASK"
	SourceScheduleEvent EventSource = "SCHEDULE_EVENT"
)

// CalendarEvent is the unit the export pipeline operates on. Instances are
// built fresh per export call and never mutated afterwards.
type CalendarEvent struct {
	// ID is stable and derivable from the source record
	// ("assessment-<id>" for projected assessments). It is the
	// deduplication key: within one export, IDs are unique.
	ID string

	UserID string
	Title  string

	// StartsAt / EndsAt are UTC-normalized instants. A zero value means
	// the timestamp could not be resolved from the source record.
	StartsAt time.Time
	EndsAt   time.Time

	// RawStart / RawEnd keep the record's original timestamp text so the
	// preview formatter can fall back to it when an instant is missing.
	RawStart string
	RawEnd   string

	Location string
	Notes    string

	Source   EventSource
	SourceID string
}

// AssessmentRecord is an assessment-like row as returned by the record store
// (or the upstream syllabus ingestion). Timestamp fields carry the raw text
// exactly as ingested; resolving them into instants is the projector's job.
type AssessmentRecord struct {
	ID       string
	CourseID string
	UserID   string
	Title    string

	StartsAt string // may be empty
	EndsAt   string // due date text, may be empty

	DurationMinutes int      // 0 = unset
	Weight          *float64 // fraction of the final grade, nil = unset

	Location string
	Notes    string
}

// ScheduleEventRecord is a scheduled occurrence (lecture, tutorial, office
// hour) as returned by the record store.
type ScheduleEventRecord struct {
	ID     string
	UserID string
	Title  string

	StartsAt string
	EndsAt   string

	Location string
	Notes    string

	// Recurrence is raw RRULE text ("FREQ=WEEKLY;..."); empty for a
	// one-off event.
	Recurrence string
}

// ExportRequest describes one export or preview call.
type ExportRequest struct {
	UserID     string
	TimezoneID string // IANA zone the artifact is rendered for

	// CourseIDs limits the assessment lookup; empty means all of the
	// user's courses.
	CourseIDs []string

	// WindowStart / WindowEnd bound the export window, inclusive on both
	// ends. A zero value means unbounded on that side.
	WindowStart time.Time
	WindowEnd   time.Time

	// Events, when non-empty, is used verbatim instead of any store
	// lookup. Caller-supplied events take precedence over store-derived
	// ones during deduplication.
	Events []CalendarEvent

	FilenameHint string
}

// RenderedArtifact is the serialized calendar payload. Callers must treat
// Payload as read-only.
type RenderedArtifact struct {
	Payload     []byte
	Filename    string
	ContentType string
}

// ExportResponse wraps a successful export.
type ExportResponse struct {
	Artifact    RenderedArtifact
	EventCount  int
	GeneratedAt time.Time
}

// PreviewType filters which events show up in a text preview.
type PreviewType string

const (
	PreviewAll           PreviewType = "ALL"
	PreviewAssessment    PreviewType = "ASSESSMENT"
	PreviewScheduleEvent PreviewType = "SCHEDULE_EVENT"
)
