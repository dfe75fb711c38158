package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/phrazzld/forgetmenot/internal/platform/logger"
	"github.com/phrazzld/forgetmenot/internal/store"
)

// PostgresReadEventStore implements the store.ReadEventStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReadEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReadEventStore creates a new PostgreSQL implementation of the ReadEventStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresReadEventStore(db store.DBTX, logger *slog.Logger) *PostgresReadEventStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReadEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "read_event_store")),
	}
}

// Ensure PostgresReadEventStore implements store.ReadEventStore interface
var _ store.ReadEventStore = (*PostgresReadEventStore)(nil)

// Create implements store.ReadEventStore.Create
func (s *PostgresReadEventStore) Create(ctx context.Context, event *domain.ReadEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		return err
	}

	var timeSpent sql.NullInt64
	if event.TimeSpent != nil {
		timeSpent = sql.NullInt64{Int64: int64(*event.TimeSpent), Valid: true}
	}

	query := `
		INSERT INTO read_events (id, note_id, user_id, read_date, time_spent)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.ExecContext(ctx, query, event.ID, event.NoteID, event.UserID, event.ReadDate, timeSpent); err != nil {
		log.Error("failed to create read event",
			slog.String("error", err.Error()),
			slog.String("note_id", event.NoteID.String()))
		return store.NewStoreError("read_event", "create", "failed to insert read event", MapError(err))
	}

	return nil
}

// ListByNote implements store.ReadEventStore.ListByNote
func (s *PostgresReadEventStore) ListByNote(ctx context.Context, noteID uuid.UUID) ([]*domain.ReadEvent, error) {
	query := `
		SELECT id, note_id, user_id, read_date, time_spent
		FROM read_events
		WHERE note_id = $1
		ORDER BY read_date DESC, id DESC
	`
	return s.query(ctx, "list_by_note", query, noteID)
}

// ListRecentByNotes implements store.ReadEventStore.ListRecentByNotes
func (s *PostgresReadEventStore) ListRecentByNotes(
	ctx context.Context,
	noteIDs []uuid.UUID,
	perNote int,
) (map[uuid.UUID][]*domain.ReadEvent, error) {
	grouped := make(map[uuid.UUID][]*domain.ReadEvent, len(noteIDs))
	if len(noteIDs) == 0 || perNote <= 0 {
		return grouped, nil
	}

	query := `
		SELECT id, note_id, user_id, read_date, time_spent
		FROM (
			SELECT id, note_id, user_id, read_date, time_spent,
			       ROW_NUMBER() OVER (PARTITION BY note_id ORDER BY read_date DESC, id DESC) AS rn
			FROM read_events
			WHERE note_id = ANY($1::uuid[])
		) ranked
		WHERE rn <= $2
		ORDER BY note_id, read_date DESC, id DESC
	`
	events, err := s.query(ctx, "list_recent", query, uuidArrayLiteral(noteIDs), perNote)
	if err != nil {
		return nil, err
	}

	for _, e := range events {
		grouped[e.NoteID] = append(grouped[e.NoteID], e)
	}
	return grouped, nil
}

// CountByOwnerBetween implements store.ReadEventStore.CountByOwnerBetween
func (s *PostgresReadEventStore) CountByOwnerBetween(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) (int, error) {
	query := `
		SELECT COUNT(*) FROM read_events
		WHERE user_id = $1 AND read_date >= $2 AND read_date < $3
	`
	var n int
	if err := s.db.QueryRowContext(ctx, query, userID, from, to).Scan(&n); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count read events",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, store.NewStoreError("read_event", "count", "failed to count read events", MapError(err))
	}
	return n, nil
}

func (s *PostgresReadEventStore) query(
	ctx context.Context,
	operation, query string,
	args ...any,
) ([]*domain.ReadEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query read events",
			slog.String("error", err.Error()),
			slog.String("operation", operation))
		return nil, store.NewStoreError("read_event", operation, "failed to query read events", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	events := make([]*domain.ReadEvent, 0)
	for rows.Next() {
		var (
			e         domain.ReadEvent
			timeSpent sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.NoteID, &e.UserID, &e.ReadDate, &timeSpent); err != nil {
			return nil, store.NewStoreError("read_event", operation, "failed to scan read event", MapError(err))
		}
		if timeSpent.Valid {
			v := int(timeSpent.Int64)
			e.TimeSpent = &v
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("read_event", operation, "failed iterating read events", MapError(err))
	}

	return events, nil
}

// WithTx implements store.ReadEventStore.WithTx
func (s *PostgresReadEventStore) WithTx(tx *sql.Tx) store.ReadEventStore {
	return &PostgresReadEventStore{
		db:     tx,
		logger: s.logger,
	}
}

// uuidArrayLiteral renders ids as a Postgres array literal for a $n::uuid[]
// parameter. UUIDs never need quoting.
func uuidArrayLiteral(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
