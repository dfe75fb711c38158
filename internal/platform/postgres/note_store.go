package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/phrazzld/forgetmenot/internal/platform/logger"
	"github.com/phrazzld/forgetmenot/internal/store"
)

// noteSelect is shared by every note read so rows always scan the same way.
// The category is expanded through a LEFT JOIN; a note without a category
// scans NULLs into the c.* columns.
const noteSelect = `
	SELECT n.id, n.user_id, n.title, n.content, n.tags, n.category_id, n.read_count,
	       n.next_read_date, n.last_read_date, n.created_at, n.updated_at,
	       c.id, c.user_id, c.name, c.color, c.description, c.created_at, c.updated_at
	FROM notes n
	LEFT JOIN categories c ON c.id = n.category_id
`

// PostgresNoteStore implements the store.NoteStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNoteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNoteStore creates a new PostgreSQL implementation of the NoteStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresNoteStore(db store.DBTX, logger *slog.Logger) *PostgresNoteStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNoteStore{
		db:     db,
		logger: logger.With(slog.String("component", "note_store")),
	}
}

// Ensure PostgresNoteStore implements store.NoteStore interface
var _ store.NoteStore = (*PostgresNoteStore)(nil)

// Create implements store.NoteStore.Create
func (s *PostgresNoteStore) Create(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		log.Warn("note validation failed during create",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return err
	}

	tags, err := encodeTags(note.Tags)
	if err != nil {
		return store.NewStoreError("note", "create", "failed to encode tags", err)
	}

	query := `
		INSERT INTO notes (
			id, user_id, title, content, tags, category_id, read_count,
			next_read_date, last_read_date, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		note.ID,
		note.UserID,
		nullString(note.Title),
		note.Content,
		tags,
		nullUUID(note.CategoryID),
		note.ReadCount,
		note.NextReadDate,
		nullTime(note.LastReadDate),
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create note",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()),
			slog.String("user_id", note.UserID.String()))
		return store.NewStoreError("note", "create", "failed to insert note", MapError(err))
	}

	log.Debug("note created",
		slog.String("note_id", note.ID.String()),
		slog.String("user_id", note.UserID.String()))
	return nil
}

// GetByOwner implements store.NoteStore.GetByOwner
func (s *PostgresNoteStore) GetByOwner(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error) {
	query := noteSelect + `WHERE n.id = $1 AND n.user_id = $2`
	return s.getOne(ctx, "get", query, userID, id)
}

// GetForUpdate implements store.NoteStore.GetForUpdate
func (s *PostgresNoteStore) GetForUpdate(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error) {
	query := noteSelect + `WHERE n.id = $1 AND n.user_id = $2 FOR UPDATE OF n`
	return s.getOne(ctx, "get_for_update", query, userID, id)
}

func (s *PostgresNoteStore) getOne(
	ctx context.Context,
	operation, query string,
	userID, id uuid.UUID,
) (*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	note, err := scanNote(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("note not found",
				slog.String("note_id", id.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrNoteNotFound
		}
		log.Error("failed to get note",
			slog.String("error", err.Error()),
			slog.String("operation", operation),
			slog.String("note_id", id.String()))
		return nil, store.NewStoreError("note", operation, "failed to query note", MapError(err))
	}

	return note, nil
}

// Update implements store.NoteStore.Update
func (s *PostgresNoteStore) Update(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		return err
	}

	tags, err := encodeTags(note.Tags)
	if err != nil {
		return store.NewStoreError("note", "update", "failed to encode tags", err)
	}

	query := `
		UPDATE notes
		SET title = $1, content = $2, tags = $3::jsonb, category_id = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		nullString(note.Title),
		note.Content,
		tags,
		nullUUID(note.CategoryID),
		note.UpdatedAt,
		note.ID,
		note.UserID,
	)
	if err != nil {
		log.Error("failed to update note",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return store.NewStoreError("note", "update", "failed to update note", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrNoteNotFound)
}

// UpdateSchedule implements store.NoteStore.UpdateSchedule
func (s *PostgresNoteStore) UpdateSchedule(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE notes
		SET read_count = $1, next_read_date = $2, last_read_date = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		note.ReadCount,
		note.NextReadDate,
		nullTime(note.LastReadDate),
		note.UpdatedAt,
		note.ID,
		note.UserID,
	)
	if err != nil {
		log.Error("failed to update note schedule",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return store.NewStoreError("note", "update_schedule", "failed to update schedule", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrNoteNotFound); err != nil {
		return err
	}

	log.Debug("note schedule updated",
		slog.String("note_id", note.ID.String()),
		slog.Int("read_count", note.ReadCount),
		slog.Time("next_read_date", note.NextReadDate))
	return nil
}

// Delete implements store.NoteStore.Delete
func (s *PostgresNoteStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Error("failed to delete note",
			slog.String("error", err.Error()),
			slog.String("note_id", id.String()))
		return store.NewStoreError("note", "delete", "failed to delete note", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrNoteNotFound); err != nil {
		return err
	}

	log.Debug("note deleted", slog.String("note_id", id.String()))
	return nil
}

// ListByOwner implements store.NoteStore.ListByOwner
func (s *PostgresNoteStore) ListByOwner(
	ctx context.Context,
	userID uuid.UUID,
	filter store.NoteFilter,
) ([]*domain.Note, error) {
	query := noteSelect + `
		WHERE n.user_id = $1 AND ($2::uuid IS NULL OR n.category_id = $2::uuid)
		ORDER BY n.created_at DESC, n.id DESC
	`
	return s.list(ctx, "list", query, userID, nullUUID(filter.CategoryID))
}

// ListDue implements store.NoteStore.ListDue
func (s *PostgresNoteStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	cutoff time.Time,
) ([]*domain.Note, error) {
	query := noteSelect + `
		WHERE n.user_id = $1 AND n.next_read_date <= $2
		ORDER BY n.next_read_date ASC, n.created_at ASC, n.id ASC
	`
	return s.list(ctx, "list_due", query, userID, cutoff)
}

func (s *PostgresNoteStore) list(
	ctx context.Context,
	operation, query string,
	args ...any,
) ([]*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list notes",
			slog.String("error", err.Error()),
			slog.String("operation", operation))
		return nil, store.NewStoreError("note", operation, "failed to query notes", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	notes := make([]*domain.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, store.NewStoreError("note", operation, "failed to scan note", MapError(err))
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("note", operation, "failed iterating notes", MapError(err))
	}

	log.Debug("notes listed",
		slog.String("operation", operation),
		slog.Int("count", len(notes)))
	return notes, nil
}

// CountByOwner implements store.NoteStore.CountByOwner
func (s *PostgresNoteStore) CountByOwner(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count(ctx, "count", `SELECT COUNT(*) FROM notes WHERE user_id = $1`, userID)
}

// CountDue implements store.NoteStore.CountDue
func (s *PostgresNoteStore) CountDue(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int, error) {
	return s.count(
		ctx,
		"count_due",
		`SELECT COUNT(*) FROM notes WHERE user_id = $1 AND next_read_date <= $2`,
		userID,
		cutoff,
	)
}

func (s *PostgresNoteStore) count(ctx context.Context, operation, query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count notes",
			slog.String("error", err.Error()),
			slog.String("operation", operation))
		return 0, store.NewStoreError("note", operation, "failed to count notes", MapError(err))
	}
	return n, nil
}

// WithTx implements store.NoteStore.WithTx
func (s *PostgresNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return &PostgresNoteStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var (
		note         domain.Note
		title        sql.NullString
		tags         []byte
		categoryID   uuid.NullUUID
		lastReadDate sql.NullTime

		catID          uuid.NullUUID
		catUserID      uuid.NullUUID
		catName        sql.NullString
		catColor       sql.NullString
		catDescription sql.NullString
		catCreatedAt   sql.NullTime
		catUpdatedAt   sql.NullTime
	)

	err := row.Scan(
		&note.ID,
		&note.UserID,
		&title,
		&note.Content,
		&tags,
		&categoryID,
		&note.ReadCount,
		&note.NextReadDate,
		&lastReadDate,
		&note.CreatedAt,
		&note.UpdatedAt,
		&catID,
		&catUserID,
		&catName,
		&catColor,
		&catDescription,
		&catCreatedAt,
		&catUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if note.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	note.Title = stringPtr(title)
	note.LastReadDate = timePtr(lastReadDate)
	if categoryID.Valid {
		id := categoryID.UUID
		note.CategoryID = &id
	}
	if catID.Valid {
		note.Category = &domain.Category{
			ID:          catID.UUID,
			UserID:      catUserID.UUID,
			Name:        catName.String,
			Color:       stringPtr(catColor),
			Description: stringPtr(catDescription),
			CreatedAt:   catCreatedAt.Time,
			UpdatedAt:   catUpdatedAt.Time,
		}
	}

	return &note, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTags(raw []byte) ([]string, error) {
	tags := []string{}
	if len(raw) == 0 {
		return tags, nil
	}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
