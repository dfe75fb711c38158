package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/phrazzld/forgetmenot/internal/store"
	"github.com/stretchr/testify/mock"
)

// fakeTransactor runs fn directly with a nil transaction. The mocks below
// ignore the transaction in WithTx, so the transactional path is exercised
// without a database.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	f.calls++
	return fn(ctx, nil)
}

// MockNoteStore mocks the store.NoteStore interface
type MockNoteStore struct {
	mock.Mock
}

func (m *MockNoteStore) Create(ctx context.Context, note *domain.Note) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockNoteStore) GetByOwner(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteStore) GetForUpdate(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteStore) Update(ctx context.Context, note *domain.Note) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockNoteStore) UpdateSchedule(ctx context.Context, note *domain.Note) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockNoteStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockNoteStore) ListByOwner(
	ctx context.Context,
	userID uuid.UUID,
	filter store.NoteFilter,
) ([]*domain.Note, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Note), args.Error(1)
}

func (m *MockNoteStore) ListDue(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]*domain.Note, error) {
	args := m.Called(ctx, userID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Note), args.Error(1)
}

func (m *MockNoteStore) CountByOwner(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNoteStore) CountDue(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int, error) {
	args := m.Called(ctx, userID, cutoff)
	return args.Int(0), args.Error(1)
}

func (m *MockNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return m
}

// MockReadEventStore mocks the store.ReadEventStore interface
type MockReadEventStore struct {
	mock.Mock
}

func (m *MockReadEventStore) Create(ctx context.Context, event *domain.ReadEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockReadEventStore) ListByNote(ctx context.Context, noteID uuid.UUID) ([]*domain.ReadEvent, error) {
	args := m.Called(ctx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReadEvent), args.Error(1)
}

func (m *MockReadEventStore) ListRecentByNotes(
	ctx context.Context,
	noteIDs []uuid.UUID,
	perNote int,
) (map[uuid.UUID][]*domain.ReadEvent, error) {
	args := m.Called(ctx, noteIDs, perNote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]*domain.ReadEvent), args.Error(1)
}

func (m *MockReadEventStore) CountByOwnerBetween(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockReadEventStore) WithTx(tx *sql.Tx) store.ReadEventStore {
	return m
}

// MockDailyStatStore mocks the store.DailyStatStore interface
type MockDailyStatStore struct {
	mock.Mock
}

func (m *MockDailyStatStore) IncrementNotesRead(ctx context.Context, userID uuid.UUID, day string) error {
	return m.Called(ctx, userID, day).Error(0)
}

func (m *MockDailyStatStore) IncrementNotesCreated(ctx context.Context, userID uuid.UUID, day string) error {
	return m.Called(ctx, userID, day).Error(0)
}

func (m *MockDailyStatStore) Get(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyStat, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyStat), args.Error(1)
}

func (m *MockDailyStatStore) WithTx(tx *sql.Tx) store.DailyStatStore {
	return m
}

// MockCategoryStore mocks the store.CategoryStore interface
type MockCategoryStore struct {
	mock.Mock
}

func (m *MockCategoryStore) Create(ctx context.Context, category *domain.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryStore) GetByOwner(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryStore) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *MockCategoryStore) WithTx(tx *sql.Tx) store.CategoryStore {
	return m
}

// countingRecorder counts Recorder calls.
type countingRecorder struct {
	created int
	read    int
}

func (r *countingRecorder) NoteCreated() { r.created++ }
func (r *countingRecorder) NoteRead()    { r.read++ }
