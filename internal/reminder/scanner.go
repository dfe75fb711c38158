package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/phrazzld/forgetmenot/internal/domain/srs"
	"github.com/phrazzld/forgetmenot/internal/events"
	"github.com/phrazzld/forgetmenot/internal/platform/logger"
	"github.com/phrazzld/forgetmenot/internal/store"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the per-user due counts run at once.
const DefaultConcurrency = 4

// UserLister returns the users to consider for an hour of the day.
type UserLister interface {
	ListReminderCandidates(ctx context.Context, hour int) ([]*domain.User, error)
}

// DueCounter counts a user's notes due at or before cutoff.
type DueCounter interface {
	CountDue(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int, error)
}

// Recorder observes emitted reminders.
type Recorder interface {
	ReminderEmitted()
}

// Config holds the scanner settings.
type Config struct {
	// Location is the zone reminder hours and calendar days are read in.
	// Defaults to UTC.
	Location *time.Location

	// Concurrency caps parallel due counts. Defaults to DefaultConcurrency.
	Concurrency int

	// Recorder is optional.
	Recorder Recorder
}

// ScanResult summarizes one pass.
type ScanResult struct {
	Hour       int `json:"hour"`
	Candidates int `json:"candidates"`
	Reminded   int `json:"reminded"`
}

// Scanner runs the due-note reminder pass.
type Scanner struct {
	users       UserLister
	notes       DueCounter
	emitter     events.EventEmitter
	location    *time.Location
	concurrency int
	recorder    Recorder
	logger      *slog.Logger
}

// NewScanner creates a Scanner. store.UserStore and store.NoteStore satisfy
// its collaborator interfaces.
func NewScanner(
	users UserLister,
	notes DueCounter,
	emitter events.EventEmitter,
	cfg Config,
	logger *slog.Logger,
) (*Scanner, error) {
	if users == nil {
		return nil, errors.New("reminder scanner requires a user store")
	}
	if notes == nil {
		return nil, errors.New("reminder scanner requires a note store")
	}
	if emitter == nil {
		return nil, errors.New("reminder scanner requires an event emitter")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	return &Scanner{
		users:       users,
		notes:       notes,
		emitter:     emitter,
		location:    cfg.Location,
		concurrency: cfg.Concurrency,
		recorder:    cfg.Recorder,
		logger:      logger.With(slog.String("component", "reminder_scanner")),
	}, nil
}

// Location returns the scheduling zone.
func (s *Scanner) Location() *time.Location {
	return s.location
}

// Scan emits one DueNotesReminder for every candidate user of now's hour
// who has at least one due note. The first failing user aborts the scan.
func (s *Scanner) Scan(ctx context.Context, now time.Time) (ScanResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	local := now.In(s.location)
	result := ScanResult{Hour: local.Hour()}

	candidates, err := s.users.ListReminderCandidates(ctx, result.Hour)
	if err != nil {
		return result, fmt.Errorf("failed to list reminder candidates: %w", err)
	}
	result.Candidates = len(candidates)
	if len(candidates) == 0 {
		log.Debug("no reminder candidates", slog.Int("hour", result.Hour))
		return result, nil
	}

	cutoff := srs.DueCutoff(local)
	var reminded atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, user := range candidates {
		g.Go(func() error {
			sent, err := s.remind(gctx, user, cutoff, local)
			if err != nil {
				return err
			}
			if sent {
				reminded.Add(1)
			}
			return nil
		})
	}

	err = g.Wait()
	result.Reminded = int(reminded.Load())
	if err != nil {
		return result, err
	}

	log.Info("reminder scan finished",
		slog.Int("hour", result.Hour),
		slog.Int("candidates", result.Candidates),
		slog.Int("reminded", result.Reminded))
	return result, nil
}

func (s *Scanner) remind(ctx context.Context, user *domain.User, cutoff, scannedAt time.Time) (bool, error) {
	due, err := s.notes.CountDue(ctx, user.ID, cutoff)
	if err != nil {
		return false, fmt.Errorf("failed to count due notes for user %s: %w", user.ID, err)
	}
	if due == 0 {
		return false, nil
	}

	event, err := events.NewDueNotesReminderEvent(events.DueNotesReminder{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.DisplayName(),
		DueCount:  due,
		ScannedAt: scannedAt,
	})
	if err != nil {
		return false, err
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		return false, fmt.Errorf("failed to emit reminder for user %s: %w", user.ID, err)
	}

	if s.recorder != nil {
		s.recorder.ReminderEmitted()
	}
	return true, nil
}

var (
	_ UserLister = (store.UserStore)(nil)
	_ DueCounter = (store.NoteStore)(nil)
)
