package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/forgetmenot/internal/api"
	apiMiddleware "github.com/phrazzld/forgetmenot/internal/api/middleware"
	"github.com/phrazzld/forgetmenot/internal/api/shared"
	"github.com/phrazzld/forgetmenot/internal/domain/srs"
	"github.com/phrazzld/forgetmenot/internal/metrics"
	"github.com/phrazzld/forgetmenot/internal/service"
	"github.com/phrazzld/forgetmenot/internal/service/auth"
)

// routerDeps are the collaborators the HTTP surface needs.
type routerDeps struct {
	notes   service.NoteService
	srs     srs.Service
	jwt     auth.JWTService
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func (app *application) routerDeps() routerDeps {
	return routerDeps{
		notes:   app.noteService,
		srs:     app.srsService,
		jwt:     app.jwtService,
		metrics: app.metrics,
		logger:  app.logger,
	}
}

// newRouter builds the router. Trace runs first so every later log line and
// error body carries the trace id.
func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(apiMiddleware.Trace(deps.logger))
	r.Use(deps.metrics.Middleware)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", deps.metrics.Handler())

	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.jwt)
	noteHandler := api.NewNoteHandler(deps.notes, deps.srs, deps.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Route("/notes", noteHandler.Routes)
	})

	return r
}
