package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/phrazzld/forgetmenot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{
	"id", "email", "first_name", "email_notifications", "daily_reminder_time", "created_at", "updated_at",
}

func TestPostgresUserStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("inserts user", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		name := "Ada"
		user, err := domain.NewUser("ada@example.com", &name)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID, "ada@example.com", "Ada", true, "09:00", user.CreatedAt, user.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgresUserStore(db, nil).Create(context.Background(), user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		user, err := domain.NewUser("ada@example.com", nil)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(newPgErr(uniqueViolationCode))

		err = NewPostgresUserStore(db, nil).Create(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestPostgresUserStore_Get(t *testing.T) {
	t.Parallel()

	t.Run("by email", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		id := uuid.New()
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.String(), "ada@example.com", nil, true, "07:30", now, now))

		user, err := NewPostgresUserStore(db, nil).GetByEmail(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Nil(t, user.FirstName)
		assert.Equal(t, "07:30", user.DailyReminderTime)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := NewPostgresUserStore(db, nil).GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestPostgresUserStore_ListReminderCandidates(t *testing.T) {
	t.Parallel()

	t.Run("matches the hour prefix", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE email_notifications AND daily_reminder_time LIKE $1")).
			WithArgs("09:%").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(uuid.NewString(), "a@example.com", "A", true, "09:00", now, now).
				AddRow(uuid.NewString(), "b@example.com", nil, true, "09:45", now, now))

		users, err := NewPostgresUserStore(db, nil).ListReminderCandidates(context.Background(), 9)
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hour out of range", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)

		_, err := NewPostgresUserStore(db, nil).ListReminderCandidates(context.Background(), 24)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
