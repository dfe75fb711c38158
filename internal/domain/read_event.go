package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ReadEvent
var (
	ErrEmptyReadEventID     = errors.New("read event ID cannot be empty")
	ErrEmptyReadEventNoteID = errors.New("read event note ID cannot be empty")
	ErrEmptyReadEventUserID = errors.New("read event user ID cannot be empty")
	ErrNegativeTimeSpent    = errors.New("time spent cannot be negative")
)

// ReadEvent records a single time a user marked a note as read.
// Events are append-only; they are never updated or merged.
type ReadEvent struct {
	ID        uuid.UUID `json:"id"`
	NoteID    uuid.UUID `json:"note_id"`
	UserID    uuid.UUID `json:"user_id"`
	ReadDate  time.Time `json:"read_date"`
	TimeSpent *int      `json:"time_spent,omitempty"` // seconds
}

// NewReadEvent creates a ReadEvent stamped at now.
func NewReadEvent(noteID, userID uuid.UUID, timeSpent *int, now time.Time) (*ReadEvent, error) {
	event := &ReadEvent{
		ID:        uuid.New(),
		NoteID:    noteID,
		UserID:    userID,
		ReadDate:  now.UTC(),
		TimeSpent: timeSpent,
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the ReadEvent has valid data.
func (e *ReadEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyReadEventID
	}
	if e.NoteID == uuid.Nil {
		return ErrEmptyReadEventNoteID
	}
	if e.UserID == uuid.Nil {
		return ErrEmptyReadEventUserID
	}
	if e.TimeSpent != nil && *e.TimeSpent < 0 {
		return NewValidationError("time_spent", "must be zero or greater", ErrNegativeTimeSpent)
	}
	return nil
}
