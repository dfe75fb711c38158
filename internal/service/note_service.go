package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/phrazzld/forgetmenot/internal/domain/srs"
	"github.com/phrazzld/forgetmenot/internal/platform/logger"
	"github.com/phrazzld/forgetmenot/internal/redact"
	"github.com/phrazzld/forgetmenot/internal/store"
	"golang.org/x/sync/errgroup"
)

// RecentHistoryLimit is how many read events FindAll attaches to each note.
const RecentHistoryLimit = 5

// NoteService provides the note scheduling operations.
type NoteService interface {
	// CreateNote stores a new unread note scheduled one interval out.
	CreateNote(ctx context.Context, userID uuid.UUID, fields domain.NoteFields) (*domain.Note, error)

	// MarkAsRead advances the note's schedule by one read, appends a read
	// event and bumps today's rollup, all in one transaction.
	MarkAsRead(ctx context.Context, userID, noteID uuid.UUID, timeSpent *int) (*domain.Note, error)

	// FindAll lists the owner's notes, newest first, each with its most recent
	// read events.
	FindAll(ctx context.Context, userID uuid.UUID, filter store.NoteFilter) ([]*domain.Note, error)

	// FindDueForReading lists the owner's due notes, soonest due first.
	FindDueForReading(ctx context.Context, userID uuid.UUID) ([]*domain.Note, error)

	// FindOne returns a note with its full read history, newest first.
	FindOne(ctx context.Context, userID, noteID uuid.UUID) (*domain.Note, error)

	// Update applies a partial edit of the user-editable fields.
	Update(ctx context.Context, userID, noteID uuid.UUID, patch domain.NotePatch) (*domain.Note, error)

	// Remove deletes a note and its history.
	Remove(ctx context.Context, userID, noteID uuid.UUID) error

	// GetStats returns note totals evaluated against a single instant.
	GetStats(ctx context.Context, userID uuid.UUID) (*domain.NoteStats, error)
}

// Recorder observes successful writes. internal/metrics provides the
// Prometheus implementation.
type Recorder interface {
	NoteCreated()
	NoteRead()
}

type noopRecorder struct{}

func (noopRecorder) NoteCreated() {}
func (noopRecorder) NoteRead()    {}

// Option configures a NoteService.
type Option func(*noteService)

// WithClock overrides the time source. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *noteService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the zone calendar days are computed in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *noteService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithRecorder attaches a write observer.
func WithRecorder(r Recorder) Option {
	return func(s *noteService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NoteStores groups the persistence collaborators of NoteService.
type NoteStores struct {
	Notes      store.NoteStore
	ReadEvents store.ReadEventStore
	DailyStats store.DailyStatStore
	Categories store.CategoryStore
}

type noteService struct {
	notes      store.NoteStore
	readEvents store.ReadEventStore
	dailyStats store.DailyStatStore
	categories store.CategoryStore
	tx         store.Transactor
	srs        srs.Service
	clock      func() time.Time
	location   *time.Location
	recorder   Recorder
	logger     *slog.Logger
}

// NewNoteService creates a NoteService.
// It returns an error if any of the required dependencies are nil.
func NewNoteService(
	stores NoteStores,
	transactor store.Transactor,
	srsService srs.Service,
	logger *slog.Logger,
	opts ...Option,
) (NoteService, error) {
	if stores.Notes == nil {
		return nil, domain.NewValidationError("noteStore", "cannot be nil", domain.ErrValidation)
	}
	if stores.ReadEvents == nil {
		return nil, domain.NewValidationError("readEventStore", "cannot be nil", domain.ErrValidation)
	}
	if stores.DailyStats == nil {
		return nil, domain.NewValidationError("dailyStatStore", "cannot be nil", domain.ErrValidation)
	}
	if stores.Categories == nil {
		return nil, domain.NewValidationError("categoryStore", "cannot be nil", domain.ErrValidation)
	}
	if transactor == nil {
		return nil, domain.NewValidationError("transactor", "cannot be nil", domain.ErrValidation)
	}
	if srsService == nil {
		return nil, domain.NewValidationError("srsService", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &noteService{
		notes:      stores.Notes,
		readEvents: stores.ReadEvents,
		dailyStats: stores.DailyStats,
		categories: stores.Categories,
		tx:         transactor,
		srs:        srsService,
		clock:      time.Now,
		location:   time.UTC,
		recorder:   noopRecorder{},
		logger:     logger.With(slog.String("component", "note_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// now is the single source of "now" for every operation, in the
// scheduling zone.
func (s *noteService) now() time.Time {
	return s.clock().In(s.location)
}

// localize expresses a note's timestamps in the scheduling zone. The store
// hands them back in UTC.
func (s *noteService) localize(n *domain.Note) *domain.Note {
	n.NextReadDate = n.NextReadDate.In(s.location)
	if n.LastReadDate != nil {
		last := n.LastReadDate.In(s.location)
		n.LastReadDate = &last
	}
	n.CreatedAt = n.CreatedAt.In(s.location)
	n.UpdatedAt = n.UpdatedAt.In(s.location)
	for _, e := range n.History {
		e.ReadDate = e.ReadDate.In(s.location)
	}
	return n
}

func (s *noteService) localizeAll(notes []*domain.Note) []*domain.Note {
	for _, n := range notes {
		s.localize(n)
	}
	return notes
}

// CreateNote implements NoteService.CreateNote
func (s *noteService) CreateNote(
	ctx context.Context,
	userID uuid.UUID,
	fields domain.NoteFields,
) (*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	note, err := domain.NewNote(userID, fields, s.srs.NextReadDate(0, now), now)
	if err != nil {
		log.Debug("invalid note payload", slog.String("error", err.Error()))
		return nil, err
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if note.CategoryID != nil {
			category, err := s.categories.WithTx(tx).GetByOwner(ctx, userID, *note.CategoryID)
			if err != nil {
				return err
			}
			note.Category = category
		}
		if err := s.notes.WithTx(tx).Create(ctx, note); err != nil {
			return err
		}
		return s.dailyStats.WithTx(tx).IncrementNotesCreated(ctx, userID, domain.DayKey(now))
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			// the only foreign key left unchecked above is the owner
			return nil, ErrOwnerNotFound
		}
		return nil, s.mapError(ctx, "create_note", "failed to create note", err)
	}

	s.recorder.NoteCreated()
	log.Info("note created",
		slog.String("note_id", note.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Time("next_read_date", note.NextReadDate))
	return s.localize(note), nil
}

// MarkAsRead implements NoteService.MarkAsRead
func (s *noteService) MarkAsRead(
	ctx context.Context,
	userID, noteID uuid.UUID,
	timeSpent *int,
) (*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if timeSpent != nil && *timeSpent < 0 {
		return nil, domain.NewValidationError("time_spent", "must be zero or greater", domain.ErrNegativeTimeSpent)
	}

	now := s.now()
	var note *domain.Note

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// The row lock makes concurrent reads of one note advance the count
		// one at a time.
		current, err := s.notes.WithTx(tx).GetForUpdate(ctx, userID, noteID)
		if err != nil {
			return err
		}

		current.MarkRead(s.srs.NextReadDate(current.ReadCount+1, now), now)
		if err := s.notes.WithTx(tx).UpdateSchedule(ctx, current); err != nil {
			return err
		}

		event, err := domain.NewReadEvent(current.ID, userID, timeSpent, now)
		if err != nil {
			return err
		}
		if err := s.readEvents.WithTx(tx).Create(ctx, event); err != nil {
			return err
		}

		if err := s.dailyStats.WithTx(tx).IncrementNotesRead(ctx, userID, domain.DayKey(now)); err != nil {
			return err
		}

		note = current
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, "mark_as_read", "failed to record read", err)
	}

	s.recorder.NoteRead()
	log.Info("note marked as read",
		slog.String("note_id", note.ID.String()),
		slog.Int("read_count", note.ReadCount),
		slog.Time("next_read_date", note.NextReadDate))
	return s.localize(note), nil
}

// FindAll implements NoteService.FindAll
func (s *noteService) FindAll(
	ctx context.Context,
	userID uuid.UUID,
	filter store.NoteFilter,
) ([]*domain.Note, error) {
	notes, err := s.notes.ListByOwner(ctx, userID, filter)
	if err != nil {
		return nil, s.mapError(ctx, "find_all", "failed to list notes", err)
	}
	if len(notes) == 0 {
		return notes, nil
	}

	ids := make([]uuid.UUID, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	recent, err := s.readEvents.ListRecentByNotes(ctx, ids, RecentHistoryLimit)
	if err != nil {
		return nil, s.mapError(ctx, "find_all", "failed to load recent reads", err)
	}
	for _, n := range notes {
		n.History = recent[n.ID]
	}

	return s.localizeAll(notes), nil
}

// FindDueForReading implements NoteService.FindDueForReading
func (s *noteService) FindDueForReading(ctx context.Context, userID uuid.UUID) ([]*domain.Note, error) {
	notes, err := s.notes.ListDue(ctx, userID, srs.DueCutoff(s.now()))
	if err != nil {
		return nil, s.mapError(ctx, "find_due", "failed to list due notes", err)
	}
	return s.localizeAll(notes), nil
}

// FindOne implements NoteService.FindOne
func (s *noteService) FindOne(ctx context.Context, userID, noteID uuid.UUID) (*domain.Note, error) {
	note, err := s.notes.GetByOwner(ctx, userID, noteID)
	if err != nil {
		return nil, s.mapError(ctx, "find_one", "failed to get note", err)
	}

	history, err := s.readEvents.ListByNote(ctx, note.ID)
	if err != nil {
		return nil, s.mapError(ctx, "find_one", "failed to load history", err)
	}
	note.History = history

	return s.localize(note), nil
}

// Update implements NoteService.Update
func (s *noteService) Update(
	ctx context.Context,
	userID, noteID uuid.UUID,
	patch domain.NotePatch,
) (*domain.Note, error) {
	now := s.now()
	var note *domain.Note

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current, err := s.notes.WithTx(tx).GetForUpdate(ctx, userID, noteID)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			note = current
			return nil
		}

		var category *domain.Category
		if patch.CategoryID != nil && !patch.ClearCategory {
			if category, err = s.categories.WithTx(tx).GetByOwner(ctx, userID, *patch.CategoryID); err != nil {
				return err
			}
		}

		if err := current.Apply(patch, now); err != nil {
			return err
		}
		if category != nil {
			current.Category = category
		}
		if err := s.notes.WithTx(tx).Update(ctx, current); err != nil {
			return err
		}

		note = current
		return nil
	})
	if err != nil {
		return nil, s.mapError(ctx, "update", "failed to update note", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("note updated",
		slog.String("note_id", noteID.String()))
	return s.localize(note), nil
}

// Remove implements NoteService.Remove
func (s *noteService) Remove(ctx context.Context, userID, noteID uuid.UUID) error {
	if err := s.notes.Delete(ctx, userID, noteID); err != nil {
		return s.mapError(ctx, "remove", "failed to delete note", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("note removed",
		slog.String("note_id", noteID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// GetStats implements NoteService.GetStats
func (s *noteService) GetStats(ctx context.Context, userID uuid.UUID) (*domain.NoteStats, error) {
	now := s.now()
	dayStart := srs.StartOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var stats domain.NoteStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.notes.CountByOwner(gctx, userID)
		stats.Total = n
		return err
	})
	g.Go(func() error {
		n, err := s.notes.CountDue(gctx, userID, srs.DueCutoff(now))
		stats.DueToday = n
		return err
	})
	g.Go(func() error {
		n, err := s.readEvents.CountByOwnerBetween(gctx, userID, dayStart, dayEnd)
		stats.ReadToday = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, s.mapError(ctx, "get_stats", "failed to compute stats", err)
	}
	return &stats, nil
}

// mapError turns store errors into the service's vocabulary. Validation
// errors pass through untouched so the API layer can report the field.
func (s *noteService) mapError(ctx context.Context, operation, message string, err error) error {
	switch {
	case errors.Is(err, store.ErrNoteNotFound):
		return ErrNoteNotFound
	case errors.Is(err, store.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return ErrOwnerNotFound
	case errors.Is(err, domain.ErrValidation):
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Error(message,
		slog.String("operation", operation),
		slog.String("error", redact.Error(err)))
	return NewServiceError(operation, message, err)
}
