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

var categoryRowColumns = []string{"id", "user_id", "name", "color", "description", "created_at", "updated_at"}

func TestPostgresCategoryStore(t *testing.T) {
	t.Parallel()

	t.Run("create duplicate name", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		category, err := domain.NewCategory(uuid.New(), "Quotes", nil, nil)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories")).
			WillReturnError(newPgErr(uniqueViolationCode))

		err = NewPostgresCategoryStore(db, nil).Create(context.Background(), category)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("get by owner", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		userID, id := uuid.New(), uuid.New()
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND user_id = $2")).
			WithArgs(id, userID).
			WillReturnRows(sqlmock.NewRows(categoryRowColumns).
				AddRow(id.String(), userID.String(), "Books", nil, "Longer reads", now, now))

		category, err := NewPostgresCategoryStore(db, nil).GetByOwner(context.Background(), userID, id)
		require.NoError(t, err)
		assert.Equal(t, "Books", category.Name)
		assert.Nil(t, category.Color)
		require.NotNil(t, category.Description)
		assert.Equal(t, "Longer reads", *category.Description)
	})

	t.Run("foreign category is not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM categories")).
			WillReturnRows(sqlmock.NewRows(categoryRowColumns))

		_, err := NewPostgresCategoryStore(db, nil).GetByOwner(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrCategoryNotFound)
	})

	t.Run("list orders by name", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		userID := uuid.New()
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name ASC")).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(categoryRowColumns).
				AddRow(uuid.NewString(), userID.String(), "Books", nil, nil, now, now).
				AddRow(uuid.NewString(), userID.String(), "Quotes", "#ff8800", nil, now, now))

		categories, err := NewPostgresCategoryStore(db, nil).ListByOwner(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, "Books", categories[0].Name)
	})
}
