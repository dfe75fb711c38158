package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
)

// NoteFilter narrows ListByOwner.
type NoteFilter struct {
	// CategoryID restricts the result to one category when set.
	CategoryID *uuid.UUID
}

// NoteStore defines the interface for note data persistence.
// Every lookup is scoped by owner: a note that exists but belongs to another
// user is reported exactly like a missing one, with ErrNoteNotFound.
// Version: 1.0
type NoteStore interface {
	// Create saves a new note.
	// Returns validation errors if the note is invalid and ErrInvalidEntity
	// if the owner or category does not exist.
	Create(ctx context.Context, note *domain.Note) error

	// GetByOwner retrieves a note with its category expanded.
	// Returns ErrNoteNotFound if the note does not exist for the owner.
	GetByOwner(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error)

	// GetForUpdate retrieves a note and locks its row until the surrounding
	// transaction ends. Concurrent reads of the same note are serialized by
	// this lock. It MUST be called on a store returned by WithTx.
	// Returns ErrNoteNotFound if the note does not exist for the owner.
	GetForUpdate(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error)

	// Update persists the user-editable fields of a note (title, content,
	// tags, category). Scheduling fields are not touched.
	// Returns ErrNoteNotFound if the note does not exist for the owner.
	Update(ctx context.Context, note *domain.Note) error

	// UpdateSchedule persists read_count, next_read_date and last_read_date.
	// Returns ErrNoteNotFound if the note does not exist for the owner.
	UpdateSchedule(ctx context.Context, note *domain.Note) error

	// Delete removes a note. Its read events are removed by the schema's
	// ON DELETE CASCADE.
	// Returns ErrNoteNotFound if the note does not exist for the owner.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// ListByOwner returns the owner's notes, newest created first, with
	// categories expanded. Returns an empty slice when there are none.
	ListByOwner(ctx context.Context, userID uuid.UUID, filter NoteFilter) ([]*domain.Note, error)

	// ListDue returns notes with next_read_date <= cutoff ordered by
	// next_read_date, then created_at, then id, so ties are stable.
	ListDue(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]*domain.Note, error)

	// CountByOwner returns the number of notes the owner has.
	CountByOwner(ctx context.Context, userID uuid.UUID) (int, error)

	// CountDue returns the number of notes ListDue would return.
	CountDue(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int, error)

	// WithTx returns a new NoteStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) NoteStore
}
