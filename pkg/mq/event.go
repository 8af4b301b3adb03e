package mq

import (
	"encoding/json"
	"time"
)

// Routing keys
const (
	RoutingNoteAdded       = "note.added"
	RoutingNoteDeleted     = "note.deleted"
	RoutingReportGenerated = "report.generated"
)

// Event 是发布到交换机的统一信封
type Event struct {
	Type       string          `json:"type"`
	TraceID    string          `json:"trace_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

func NewEvent(eventType, traceID string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Type:       eventType,
		TraceID:    traceID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}, nil
}

type NoteAddedPayload struct {
	ProjectID string `json:"project_id"`
	NoteID    int    `json:"note_id"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
}

type NoteDeletedPayload struct {
	ProjectID string `json:"project_id"`
	NoteID    int    `json:"note_id"`
	UserID    string `json:"user_id"`
}

type ReportGeneratedPayload struct {
	ProjectID string `json:"project_id"`
	Filename  string `json:"filename"`
	UserID    string `json:"user_id"`
}
