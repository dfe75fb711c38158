package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TypeDueNotesReminder is emitted once per user and scan when the user has
// notes due for reading.
const TypeDueNotesReminder = "reminder.due_notes"

// Event is an in-process notification with a JSON payload. Keeping the
// payload serialized lets handlers forward it to an outbox or mailer
// unchanged.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent creates an Event of eventType stamped at now.
func NewEvent(eventType string, payload any, now time.Time) (*Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   b,
		CreatedAt: now.UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// DueNotesReminder is the payload of TypeDueNotesReminder.
type DueNotesReminder struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	DueCount  int       `json:"due_count"`
	ScannedAt time.Time `json:"scanned_at"`
}

// NewDueNotesReminderEvent wraps r in an Event stamped at r.ScannedAt.
func NewDueNotesReminderEvent(r DueNotesReminder) (*Event, error) {
	return NewEvent(TypeDueNotesReminder, r, r.ScannedAt)
}

// EventHandler processes events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter publishes events without knowledge of the handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
