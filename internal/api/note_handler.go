package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/forgetmenot/internal/api/shared"
	"github.com/phrazzld/forgetmenot/internal/domain/srs"
	"github.com/phrazzld/forgetmenot/internal/platform/logger"
	"github.com/phrazzld/forgetmenot/internal/service"
)

// NoteHandler handles note-related HTTP requests.
type NoteHandler struct {
	notes  service.NoteService
	srs    srs.Service
	logger *slog.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes service.NoteService, srsService srs.Service, logger *slog.Logger) *NoteHandler {
	if notes == nil || srsService == nil || logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("note service, srs service and logger are required for NoteHandler")
	}

	return &NoteHandler{
		notes:  notes,
		srs:    srsService,
		logger: logger.With(slog.String("component", "note_handler")),
	}
}

// Routes mounts the note endpoints on r. Static paths are registered before
// the {id} routes so "due" and "stats" are never parsed as IDs.
func (h *NoteHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateNote)
	r.Get("/", h.ListNotes)
	r.Get("/due", h.ListDueNotes)
	r.Get("/stats", h.GetStats)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetNote)
		r.Patch("/", h.UpdateNote)
		r.Delete("/", h.DeleteNote)
		r.Post("/read", h.MarkRead)
	})
}

// decodeBody decodes and validates the request body into req. An empty body
// is accepted when allowEmpty is set. It writes the error response itself.
func (h *NoteHandler) decodeBody(w http.ResponseWriter, r *http.Request, req any, allowEmpty bool) bool {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if err := shared.DecodeJSON(w, r, req); err != nil {
		if allowEmpty && errors.Is(err, shared.ErrEmptyBody) {
			return true
		}
		log.Debug("failed to decode request body", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// CreateNote handles POST /api/notes.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}
	fields, err := req.toFields()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	note, err := h.notes.CreateNote(r.Context(), userID, fields)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create note")
		return
	}

	log.Debug("note created", slog.String("note_id", note.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, noteToResponse(note, h.srs))
}

// ListNotes handles GET /api/notes with an optional category_id filter.
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	filter, err := parseNoteFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	notes, err := h.notes.FindAll(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list notes")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, notesToResponse(notes, h.srs))
}

// ListDueNotes handles GET /api/notes/due.
func (h *NoteHandler) ListDueNotes(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	notes, err := h.notes.FindDueForReading(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due notes")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, notesToResponse(notes, h.srs))
}

// GetStats handles GET /api/notes/stats.
func (h *NoteHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	stats, err := h.notes.GetStats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get note statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// GetNote handles GET /api/notes/{id}.
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	note, err := h.notes.FindOne(r.Context(), userID, noteID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get note")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, noteToResponse(note, h.srs))
}

// UpdateNote handles PATCH /api/notes/{id}. Only the provided fields change.
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if !h.decodeBody(w, r, &req, true) {
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	note, err := h.notes.Update(r.Context(), userID, noteID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update note")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, noteToResponse(note, h.srs))
}

// MarkRead handles POST /api/notes/{id}/read. The body is optional.
func (h *NoteHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, noteID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req MarkReadRequest
	if !h.decodeBody(w, r, &req, true) {
		return
	}

	note, err := h.notes.MarkAsRead(r.Context(), userID, noteID, req.TimeSpent)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to mark note as read")
		return
	}

	log.Debug("note marked as read",
		slog.String("note_id", note.ID.String()),
		slog.Int("read_count", note.ReadCount))
	shared.RespondWithJSON(w, r, http.StatusOK, noteToResponse(note, h.srs))
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.notes.Remove(r.Context(), userID, noteID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
