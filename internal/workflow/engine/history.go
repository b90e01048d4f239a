package engine

import (
	"context"
	"encoding/json"
	"time"
)

// EventType discriminates journal entries.

type EventType string

const (
	EventWorkflowStarted   EventType = "workflow_started"
	EventActivityCompleted EventType = "activity_completed"
	EventAwaitCompleted    EventType = "await_completed"
	EventSignalReceived    EventType = "signal_received"
	EventWorkflowCompleted EventType = "workflow_completed"
)

// HistoryEvent is one entry of a workflow's journal. Events are keyed by
// (workflow id, seq) and replayed in seq order after a restart.

type HistoryEvent struct {
	Seq        int64           `json:"seq"`
	Type       EventType       `json:"type"`
	Name       string          `json:"name,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Failed     bool            `json:"failed,omitempty"`
	Error      string          `json:"error,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// HistoryStore persists workflow journals. Append must be atomic per event;
// Load returns events ordered by seq.

type HistoryStore interface {
	Append(ctx context.Context, workflowID string, e HistoryEvent) error
	Load(ctx context.Context, workflowID string) ([]HistoryEvent, error)
	ListWorkflowIDs(ctx context.Context) ([]string, error)
}

// startedPayload is the journaled input of EventWorkflowStarted, enough to
// re-dispatch the workflow function on resume.

type startedPayload struct {
	WorkflowType string          `json:"workflow_type"`
	Input        json.RawMessage `json:"input"`
}
