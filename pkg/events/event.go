package events

import (
	"context"
	"time"
)

const (
	TypeTurnCompleted     = "conversation.turn_completed"
	TypeClarificationOpen = "conversation.clarification_opened"
	TypeNotebookEdited    = "notebook.edited"
	TypeNotebookGenerated = "notebook.generated"
	TypeNotebookUpdated   = "notebook.updated"
	TypeNotebookCleared   = "notebook.cleared"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the dotted event name, e.g. "notebook.edited".
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

// Publisher fans events out to whatever bus is configured.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func TurnCompleted(conversationID, route, intent string, failed bool, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"conversation_id": conversationID,
			"route":           route,
			"intent":          intent,
			"failed":          failed,
		},
		OccurredAt: at,
	}
}

func ClarificationOpened(conversationID, question string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeClarificationOpen,
		Data: map[string]interface{}{
			"conversation_id": conversationID,
			"question":        question,
		},
		OccurredAt: at,
	}
}

func NotebookEdited(notebookID string, scoped bool, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeNotebookEdited,
		Data: map[string]interface{}{
			"notebook_id": notebookID,
			"scoped":      scoped,
		},
		OccurredAt: at,
	}
}

func NotebookGenerated(notebookID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeNotebookGenerated,
		Data: map[string]interface{}{
			"notebook_id": notebookID,
		},
		OccurredAt: at,
	}
}

// NotebookUpdated covers direct writes (content replaced or cleared)
func NotebookUpdated(eventType, notebookID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"notebook_id": notebookID,
		},
		OccurredAt: at,
	}
}

// NopPublisher drops every event. Used when no bus is reachable.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// MultiPublisher publishes to each bus in turn and returns the first error.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event Event) error {
	var first error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
