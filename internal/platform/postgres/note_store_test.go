package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/phrazzld/forgetmenot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noteRowColumns = []string{
	"id", "user_id", "title", "content", "tags", "category_id", "read_count",
	"next_read_date", "last_read_date", "created_at", "updated_at",
	"c_id", "c_user_id", "c_name", "c_color", "c_description", "c_created_at", "c_updated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testNote(t *testing.T, userID uuid.UUID) *domain.Note {
	t.Helper()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	note, err := domain.NewNote(userID, domain.NoteFields{
		Content: "Attention is the rarest form of generosity.",
		Tags:    []string{"quotes", "weil"},
	}, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	return note
}

func noteRow(n *domain.Note, c *domain.Category) []driver.Value {
	var title, lastRead, categoryID any
	if n.Title != nil {
		title = *n.Title
	}
	if n.LastReadDate != nil {
		lastRead = *n.LastReadDate
	}
	if n.CategoryID != nil {
		categoryID = n.CategoryID.String()
	}
	tags, _ := encodeTags(n.Tags)

	row := []driver.Value{
		n.ID.String(), n.UserID.String(), title, n.Content, []byte(tags), categoryID, int64(n.ReadCount),
		n.NextReadDate, lastRead, n.CreatedAt, n.UpdatedAt,
	}
	if c == nil {
		return append(row, nil, nil, nil, nil, nil, nil, nil)
	}
	var color any
	if c.Color != nil {
		color = *c.Color
	}
	return append(row, c.ID.String(), c.UserID.String(), c.Name, color, nil, c.CreatedAt, c.UpdatedAt)
}

func newPgErr(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, Message: "error message"}
}

func TestNewPostgresNoteStore(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPostgresNoteStore(nil, nil) })

	db, _ := newMockDB(t)
	s := NewPostgresNoteStore(db, nil)
	assert.NotNil(t, s.logger)

	tx := &sql.Tx{}
	withTx, ok := s.WithTx(tx).(*PostgresNoteStore)
	require.True(t, ok)
	assert.Equal(t, tx, withTx.db)
	assert.Equal(t, s.logger, withTx.logger)
}

func TestPostgresNoteStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("inserts note", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		note := testNote(t, uuid.New())

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notes")).
			WithArgs(
				note.ID, note.UserID, nil, note.Content, `["quotes","weil"]`, nil, 0,
				note.NextReadDate, nil, note.CreatedAt, note.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewPostgresNoteStore(db, nil).Create(context.Background(), note)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects invalid note before querying", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		note := testNote(t, uuid.New())
		note.Content = ""

		err := NewPostgresNoteStore(db, nil).Create(context.Background(), note)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps foreign key violation", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		note := testNote(t, uuid.New())

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notes")).
			WillReturnError(newPgErr(foreignKeyViolationCode))

		err := NewPostgresNoteStore(db, nil).Create(context.Background(), note)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestPostgresNoteStore_GetByOwner(t *testing.T) {
	t.Parallel()

	t.Run("expands category", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		userID := uuid.New()
		color := "#ff8800"
		category := &domain.Category{
			ID:        uuid.New(),
			UserID:    userID,
			Name:      "Quotes",
			Color:     &color,
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		note := testNote(t, userID)
		note.CategoryID = &category.ID

		mock.ExpectQuery(regexp.QuoteMeta("WHERE n.id = $1 AND n.user_id = $2")).
			WithArgs(note.ID, userID).
			WillReturnRows(sqlmock.NewRows(noteRowColumns).AddRow(noteRow(note, category)...))

		got, err := NewPostgresNoteStore(db, nil).GetByOwner(context.Background(), userID, note.ID)
		require.NoError(t, err)
		assert.Equal(t, note.ID, got.ID)
		assert.Equal(t, []string{"quotes", "weil"}, got.Tags)
		assert.Nil(t, got.Title)
		assert.Nil(t, got.LastReadDate)
		require.NotNil(t, got.CategoryID)
		assert.Equal(t, category.ID, *got.CategoryID)
		require.NotNil(t, got.Category)
		assert.Equal(t, "Quotes", got.Category.Name)
		assert.Equal(t, &color, got.Category.Color)
		assert.Nil(t, got.Category.Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("note without category", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		note := testNote(t, uuid.New())

		mock.ExpectQuery(regexp.QuoteMeta("FROM notes n")).
			WillReturnRows(sqlmock.NewRows(noteRowColumns).AddRow(noteRow(note, nil)...))

		got, err := NewPostgresNoteStore(db, nil).GetByOwner(context.Background(), note.UserID, note.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)
		assert.Nil(t, got.Category)
	})

	t.Run("missing or foreign note is not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM notes n")).
			WillReturnRows(sqlmock.NewRows(noteRowColumns))

		_, err := NewPostgresNoteStore(db, nil).GetByOwner(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrNoteNotFound)
	})
}

func TestPostgresNoteStore_GetForUpdate(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	note := testNote(t, uuid.New())

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF n")).
		WithArgs(note.ID, note.UserID).
		WillReturnRows(sqlmock.NewRows(noteRowColumns).AddRow(noteRow(note, nil)...))

	got, err := NewPostgresNoteStore(db, nil).GetForUpdate(context.Background(), note.UserID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresNoteStore_UpdateSchedule(t *testing.T) {
	t.Parallel()

	t.Run("persists schedule", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		note := testNote(t, uuid.New())
		readAt := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
		note.MarkRead(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), readAt)

		mock.ExpectExec(regexp.QuoteMeta("SET read_count = $1, next_read_date = $2, last_read_date = $3")).
			WithArgs(1, note.NextReadDate, readAt, note.UpdatedAt, note.ID, note.UserID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgresNoteStore(db, nil).UpdateSchedule(context.Background(), note))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows is not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE notes")).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgresNoteStore(db, nil).UpdateSchedule(context.Background(), testNote(t, uuid.New()))
		assert.ErrorIs(t, err, store.ErrNoteNotFound)
	})
}

func TestPostgresNoteStore_Update(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	note := testNote(t, uuid.New())
	title := "Simone Weil"
	note.Title = &title

	mock.ExpectExec(regexp.QuoteMeta("SET title = $1, content = $2, tags = $3::jsonb, category_id = $4")).
		WithArgs(title, note.Content, `["quotes","weil"]`, nil, note.UpdatedAt, note.ID, note.UserID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresNoteStore(db, nil).Update(context.Background(), note))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresNoteStore_Delete(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	userID, noteID := uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes WHERE id = $1 AND user_id = $2")).
		WithArgs(noteID, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes")).
		WithArgs(noteID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewPostgresNoteStore(db, nil)
	require.NoError(t, s.Delete(context.Background(), userID, noteID))
	assert.ErrorIs(t, s.Delete(context.Background(), userID, noteID), store.ErrNoteNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresNoteStore_ListDue(t *testing.T) {
	t.Parallel()

	t.Run("orders by next read date with stable tie break", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		userID := uuid.New()
		cutoff := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
		first, second := testNote(t, userID), testNote(t, userID)

		mock.ExpectQuery(regexp.QuoteMeta(
			"n.next_read_date <= $2 ORDER BY n.next_read_date ASC, n.created_at ASC, n.id ASC",
		)).
			WithArgs(userID, cutoff).
			WillReturnRows(sqlmock.NewRows(noteRowColumns).
				AddRow(noteRow(first, nil)...).
				AddRow(noteRow(second, nil)...))

		notes, err := NewPostgresNoteStore(db, nil).ListDue(context.Background(), userID, cutoff)
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, first.ID, notes[0].ID)
		assert.Equal(t, second.ID, notes[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta("next_read_date <=")).
			WillReturnRows(sqlmock.NewRows(noteRowColumns))

		notes, err := NewPostgresNoteStore(db, nil).ListDue(context.Background(), uuid.New(), time.Now())
		require.NoError(t, err)
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
	})
}

func TestPostgresNoteStore_ListByOwner(t *testing.T) {
	t.Parallel()

	t.Run("without filter passes null category", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		userID := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY n.created_at DESC, n.id DESC")).
			WithArgs(userID, nil).
			WillReturnRows(sqlmock.NewRows(noteRowColumns).AddRow(noteRow(testNote(t, userID), nil)...))

		notes, err := NewPostgresNoteStore(db, nil).ListByOwner(context.Background(), userID, store.NoteFilter{})
		require.NoError(t, err)
		assert.Len(t, notes, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with category filter", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		userID, categoryID := uuid.New(), uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("n.category_id = $2::uuid")).
			WithArgs(userID, categoryID).
			WillReturnRows(sqlmock.NewRows(noteRowColumns))

		_, err := NewPostgresNoteStore(db, nil).ListByOwner(
			context.Background(), userID, store.NoteFilter{CategoryID: &categoryID},
		)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM notes n")).WillReturnError(sql.ErrConnDone)

		_, err := NewPostgresNoteStore(db, nil).ListByOwner(context.Background(), uuid.New(), store.NoteFilter{})
		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "list", storeErr.Operation)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})
}

func TestPostgresNoteStore_Counts(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	userID := uuid.New()
	cutoff := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notes WHERE user_id = $1")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("AND next_read_date <= $2")).
		WithArgs(userID, cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	s := NewPostgresNoteStore(db, nil)
	total, err := s.CountByOwner(context.Background(), userID)
	require.NoError(t, err)
	due, err := s.CountDue(context.Background(), userID, cutoff)
	require.NoError(t, err)

	assert.Equal(t, 7, total)
	assert.Equal(t, 3, due)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagsEncoding(t *testing.T) {
	t.Parallel()

	encoded, err := encodeTags(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", encoded)

	decoded, err := decodeTags(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, decoded)

	decoded, err = decodeTags([]byte("null"))
	require.NoError(t, err)
	assert.Equal(t, []string{}, decoded)

	_, err = decodeTags([]byte("{"))
	assert.Error(t, err)
}
