package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/phrazzld/forgetmenot/internal/platform/logger"
	"github.com/phrazzld/forgetmenot/internal/store"
)

// PostgresDailyStatStore implements the store.DailyStatStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDailyStatStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDailyStatStore creates a new PostgreSQL implementation of the DailyStatStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresDailyStatStore(db store.DBTX, logger *slog.Logger) *PostgresDailyStatStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDailyStatStore{
		db:     db,
		logger: logger.With(slog.String("component", "daily_stat_store")),
	}
}

// Ensure PostgresDailyStatStore implements store.DailyStatStore interface
var _ store.DailyStatStore = (*PostgresDailyStatStore)(nil)

// IncrementNotesRead implements store.DailyStatStore.IncrementNotesRead
func (s *PostgresDailyStatStore) IncrementNotesRead(ctx context.Context, userID uuid.UUID, day string) error {
	query := `
		INSERT INTO daily_stats (id, user_id, date, notes_read, notes_created, total_time_spent)
		VALUES ($1, $2, $3::date, 1, 0, 0)
		ON CONFLICT (user_id, date)
		DO UPDATE SET notes_read = daily_stats.notes_read + 1
	`
	return s.increment(ctx, "increment_notes_read", query, userID, day)
}

// IncrementNotesCreated implements store.DailyStatStore.IncrementNotesCreated
func (s *PostgresDailyStatStore) IncrementNotesCreated(ctx context.Context, userID uuid.UUID, day string) error {
	query := `
		INSERT INTO daily_stats (id, user_id, date, notes_read, notes_created, total_time_spent)
		VALUES ($1, $2, $3::date, 0, 1, 0)
		ON CONFLICT (user_id, date)
		DO UPDATE SET notes_created = daily_stats.notes_created + 1
	`
	return s.increment(ctx, "increment_notes_created", query, userID, day)
}

func (s *PostgresDailyStatStore) increment(
	ctx context.Context,
	operation, query string,
	userID uuid.UUID,
	day string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, query, uuid.New(), userID, day); err != nil {
		log.Error("failed to upsert daily stat",
			slog.String("error", err.Error()),
			slog.String("operation", operation),
			slog.String("user_id", userID.String()),
			slog.String("date", day))
		return store.NewStoreError("daily_stat", operation, "failed to upsert daily stat", MapError(err))
	}

	log.Debug("daily stat incremented",
		slog.String("operation", operation),
		slog.String("user_id", userID.String()),
		slog.String("date", day))
	return nil
}

// Get implements store.DailyStatStore.Get
func (s *PostgresDailyStatStore) Get(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyStat, error) {
	query := `
		SELECT id, user_id, to_char(date, 'YYYY-MM-DD'), notes_read, notes_created, total_time_spent
		FROM daily_stats
		WHERE user_id = $1 AND date = $2::date
	`
	var stat domain.DailyStat
	err := s.db.QueryRowContext(ctx, query, userID, day).Scan(
		&stat.ID,
		&stat.UserID,
		&stat.Date,
		&stat.NotesRead,
		&stat.NotesCreated,
		&stat.TotalTimeSpent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.NewStoreError("daily_stat", "get", "failed to query daily stat", MapError(err))
	}
	return &stat, nil
}

// WithTx implements store.DailyStatStore.WithTx
func (s *PostgresDailyStatStore) WithTx(tx *sql.Tx) store.DailyStatStore {
	return &PostgresDailyStatStore{
		db:     tx,
		logger: s.logger,
	}
}
