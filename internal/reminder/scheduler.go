package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/forgetmenot/internal/redact"
)

// Runner performs a single reminder pass.
type Runner interface {
	Scan(ctx context.Context, now time.Time) (ScanResult, error)
}

// SchedulerConfig holds the scheduler settings.
type SchedulerConfig struct {
	// Interval between passes. Defaults to one hour.
	Interval time.Duration

	// Location is the zone hours are tracked in, usually Scanner.Location().
	Location *time.Location

	// Clock overrides time.Now.
	Clock func() time.Time
}

// Scheduler runs a Runner on a ticker. A pass runs at start and then on
// every tick, skipping ticks that land in an hour already scanned so a
// short interval never reminds a user twice.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	location *time.Location
	clock    func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	lastHour string
}

// NewScheduler creates a Scheduler. It does nothing until Start.
func NewScheduler(runner Runner, cfg SchedulerConfig, logger *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		runner:   runner,
		interval: cfg.Interval,
		location: cfg.Location,
		clock:    cfg.Clock,
		logger:   logger.With(slog.String("component", "reminder_scheduler")),
	}
}

// Start launches the loop. It runs until ctx is cancelled or Stop is
// called. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)
	s.logger.Info("reminder scheduler started", slog.Duration("interval", s.interval))
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("reminder scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.clock().In(s.location)
	hour := now.Format("2006-01-02T15")
	if hour == s.lastHour {
		return
	}

	if _, err := s.runner.Scan(ctx, now); err != nil {
		if ctx.Err() != nil {
			return
		}
		// the hour stays unmarked so the next tick retries it
		s.logger.Error("reminder scan failed", slog.String("error", redact.Error(err)))
		return
	}
	s.lastHour = hour
}
