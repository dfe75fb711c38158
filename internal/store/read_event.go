package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
)

// ReadEventStore defines the interface for the append-only read history.
// Version: 1.0
type ReadEventStore interface {
	// Create appends a read event.
	// Returns ErrInvalidEntity if the note or user does not exist.
	Create(ctx context.Context, event *domain.ReadEvent) error

	// ListByNote returns every event for a note, newest first.
	ListByNote(ctx context.Context, noteID uuid.UUID) ([]*domain.ReadEvent, error)

	// ListRecentByNotes returns up to perNote newest events for each note id.
	// Notes without events are absent from the map.
	ListRecentByNotes(
		ctx context.Context,
		noteIDs []uuid.UUID,
		perNote int,
	) (map[uuid.UUID][]*domain.ReadEvent, error)

	// CountByOwnerBetween counts the owner's events with from <= read_date < to.
	CountByOwnerBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)

	// WithTx returns a new ReadEventStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReadEventStore
}
