package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/api/shared"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathUUID(t *testing.T) {
	t.Parallel()

	validID := uuid.New()
	tests := []struct {
		name    string
		value   string
		want    uuid.UUID
		wantErr error
	}{
		{name: "valid", value: validID.String(), want: validID},
		{name: "missing", value: "", wantErr: domain.ErrValidation},
		{name: "malformed", value: "not-a-uuid", wantErr: domain.ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tt.value)

			got, err := getPathUUID(r, "id")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNoteFilter(t *testing.T) {
	t.Parallel()

	t.Run("no filter", func(t *testing.T) {
		t.Parallel()
		filter, err := parseNoteFilter(httptest.NewRequest(http.MethodGet, "/api/notes", nil))
		require.NoError(t, err)
		assert.Nil(t, filter.CategoryID)
	})

	t.Run("category filter", func(t *testing.T) {
		t.Parallel()
		id := uuid.New()
		filter, err := parseNoteFilter(httptest.NewRequest(http.MethodGet, "/api/notes?category_id="+id.String(), nil))
		require.NoError(t, err)
		require.NotNil(t, filter.CategoryID)
		assert.Equal(t, id, *filter.CategoryID)
	})

	t.Run("malformed category", func(t *testing.T) {
		t.Parallel()
		_, err := parseNoteFilter(httptest.NewRequest(http.MethodGet, "/api/notes?category_id=abc", nil))
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})
}

func TestHandleUserIDAndPathUUID(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	noteID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(shared.WithUserID(r.Context(), userID))
		r = withURLParam(r, "id", noteID.String())
		w := httptest.NewRecorder()

		gotUser, gotNote, ok := handleUserIDAndPathUUID(w, r, "id", nil)
		require.True(t, ok)
		assert.Equal(t, userID, gotUser)
		assert.Equal(t, noteID, gotNote)
	})

	t.Run("missing user", func(t *testing.T) {
		t.Parallel()
		r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", noteID.String())
		w := httptest.NewRecorder()

		_, _, ok := handleUserIDAndPathUUID(w, r, "id", nil)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad path id", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(shared.WithUserID(r.Context(), userID))
		r = withURLParam(r, "id", "123")
		w := httptest.NewRecorder()

		_, _, ok := handleUserIDAndPathUUID(w, r, "id", nil)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid id")
	})
}
