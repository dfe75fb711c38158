package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
)

// DailyStatStore defines the interface for per-user, per-day rollups.
// Increments are single atomic upserts keyed by (user, day): a missing row
// is created with the counter at 1 and every other counter at 0, an
// existing row has only that counter incremented.
// Version: 1.0
type DailyStatStore interface {
	// IncrementNotesRead adds one to notes_read for the day (YYYY-MM-DD).
	IncrementNotesRead(ctx context.Context, userID uuid.UUID, day string) error

	// IncrementNotesCreated adds one to notes_created for the day (YYYY-MM-DD).
	IncrementNotesCreated(ctx context.Context, userID uuid.UUID, day string) error

	// Get returns the rollup for one day.
	// Returns ErrNotFound if there was no activity that day.
	Get(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyStat, error)

	// WithTx returns a new DailyStatStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DailyStatStore
}
