package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/forgetmenot/internal/config"
	"github.com/phrazzld/forgetmenot/internal/domain/srs"
	"github.com/phrazzld/forgetmenot/internal/events"
	"github.com/phrazzld/forgetmenot/internal/metrics"
	"github.com/phrazzld/forgetmenot/internal/platform/postgres"
	"github.com/phrazzld/forgetmenot/internal/reminder"
	"github.com/phrazzld/forgetmenot/internal/service"
	"github.com/phrazzld/forgetmenot/internal/service/auth"
	"github.com/phrazzld/forgetmenot/internal/redact"
	"github.com/phrazzld/forgetmenot/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

// application holds the shared dependencies of the server and the
// operational commands.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	metrics  *metrics.Metrics
	location *time.Location

	userStore  store.UserStore
	noteStore  store.NoteStore
	transactor store.Transactor

	srsService  srs.Service
	jwtService  auth.JWTService
	noteService service.NoteService

	emitter *events.InMemoryEventEmitter
	scanner *reminder.Scanner
}

// newApplication wires stores, services and the reminder scanner on top of
// an open database. A nil m records into a private registry.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, m *metrics.Metrics) (*application, error) {
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}

	app := &application{
		config:     cfg,
		logger:     logger,
		db:         db,
		metrics:    m,
		location:   loc,
		userStore:  postgres.NewPostgresUserStore(db, logger),
		noteStore:  postgres.NewPostgresNoteStore(db, logger),
		transactor: store.NewDBTransactor(db),
		srsService: srs.NewDefaultService(),
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.noteService, err = service.NewNoteService(
		service.NoteStores{
			Notes:      app.noteStore,
			ReadEvents: postgres.NewPostgresReadEventStore(db, logger),
			DailyStats: postgres.NewPostgresDailyStatStore(db, logger),
			Categories: postgres.NewPostgresCategoryStore(db, logger),
		},
		app.transactor,
		app.srsService,
		logger,
		service.WithLocation(loc),
		service.WithRecorder(m),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize note service: %w", err)
	}

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(reminder.NewLogNotifier(logger))

	app.scanner, err = reminder.NewScanner(app.userStore, app.noteStore, app.emitter, reminder.Config{
		Location:    loc,
		Concurrency: cfg.Reminder.Concurrency,
		Recorder:    m,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reminder scanner: %w", err)
	}

	logger.Info("application initialized",
		slog.String("timezone", loc.String()),
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))
	return app, nil
}

// close releases the database connection.
func (app *application) close() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database connection", slog.String("error", redact.Error(err)))
	}
}
