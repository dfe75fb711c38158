package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/phrazzld/forgetmenot/internal/domain/srs"
)

// CreateNoteRequest defines the payload for POST /api/notes.
type CreateNoteRequest struct {
	Title      *string  `json:"title"       validate:"omitempty,max=200"`
	Content    string   `json:"content"     validate:"required,max=5000"`
	Tags       []string `json:"tags"        validate:"omitempty,max=20,dive,max=50"`
	CategoryID *string  `json:"category_id" validate:"omitempty,uuid"`
}

// UpdateNoteRequest defines the payload for PATCH /api/notes/{id}.
// Absent fields are left unchanged. The schedule is not editable.
// "category_id": null detaches the note from its category.
type UpdateNoteRequest struct {
	Title      *string        `json:"title"   validate:"omitempty,max=200"`
	Content    *string        `json:"content" validate:"omitempty,max=5000"`
	Tags       *[]string      `json:"tags"    validate:"omitempty,max=20,dive,max=50"`
	CategoryID NullableString `json:"category_id"`
}

// NullableString is a string field that tells an explicit JSON null apart
// from an absent key. Set is true whenever the key was present.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// IsNull reports whether the key was present with a null value.
func (n NullableString) IsNull() bool {
	return n.Set && n.Value == nil
}

// MarkReadRequest defines the optional payload for POST /api/notes/{id}/read.
type MarkReadRequest struct {
	// TimeSpent is the reading time in seconds.
	TimeSpent *int `json:"time_spent" validate:"omitempty,min=0"`
}

// CategoryResponse is the category embedded in a note.
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Color       *string   `json:"color,omitempty"`
	Description *string   `json:"description,omitempty"`
}

// ReadEventResponse is one entry of a note's read history.
type ReadEventResponse struct {
	ID        uuid.UUID `json:"id"`
	ReadDate  time.Time `json:"read_date"`
	TimeSpent *int      `json:"time_spent,omitempty"`
}

// NoteResponse is the API representation of a note. IntervalDays and
// Frequency describe the cadence implied by the current read count.
type NoteResponse struct {
	ID           uuid.UUID           `json:"id"`
	Title        *string             `json:"title,omitempty"`
	Content      string              `json:"content"`
	Tags         []string            `json:"tags"`
	CategoryID   *uuid.UUID          `json:"category_id,omitempty"`
	Category     *CategoryResponse   `json:"category,omitempty"`
	ReadCount    int                 `json:"read_count"`
	NextReadDate time.Time           `json:"next_read_date"`
	LastReadDate *time.Time          `json:"last_read_date,omitempty"`
	IntervalDays int                 `json:"interval_days"`
	Frequency    string              `json:"frequency"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	History      []ReadEventResponse `json:"history,omitempty"`
}

// toPatch converts the request into a domain patch.
func (r UpdateNoteRequest) toPatch() (domain.NotePatch, error) {
	patch := domain.NotePatch{
		Title:   r.Title,
		Content: r.Content,
	}
	if r.Tags != nil {
		patch.Tags = *r.Tags
		patch.SetTags = true
	}
	switch {
	case r.CategoryID.IsNull():
		patch.ClearCategory = true
	case r.CategoryID.Value != nil:
		id, err := parseUUIDField("category_id", *r.CategoryID.Value)
		if err != nil {
			return domain.NotePatch{}, err
		}
		patch.CategoryID = &id
	}
	return patch, nil
}

func (r CreateNoteRequest) toFields() (domain.NoteFields, error) {
	fields := domain.NoteFields{
		Title:   r.Title,
		Content: r.Content,
		Tags:    r.Tags,
	}
	if r.CategoryID != nil {
		id, err := parseUUIDField("category_id", *r.CategoryID)
		if err != nil {
			return domain.NoteFields{}, err
		}
		fields.CategoryID = &id
	}
	return fields, nil
}

func noteToResponse(note *domain.Note, policy srs.Service) NoteResponse {
	resp := NoteResponse{
		ID:           note.ID,
		Title:        note.Title,
		Content:      note.Content,
		Tags:         note.Tags,
		CategoryID:   note.CategoryID,
		ReadCount:    note.ReadCount,
		NextReadDate: note.NextReadDate,
		LastReadDate: note.LastReadDate,
		IntervalDays: policy.IntervalForReadCount(note.ReadCount),
		Frequency:    policy.FrequencyLabel(note.ReadCount),
		CreatedAt:    note.CreatedAt,
		UpdatedAt:    note.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if c := note.Category; c != nil {
		resp.Category = &CategoryResponse{
			ID:          c.ID,
			Name:        c.Name,
			Color:       c.Color,
			Description: c.Description,
		}
	}
	if len(note.History) > 0 {
		resp.History = make([]ReadEventResponse, len(note.History))
		for i, e := range note.History {
			resp.History[i] = ReadEventResponse{ID: e.ID, ReadDate: e.ReadDate, TimeSpent: e.TimeSpent}
		}
	}
	return resp
}

func notesToResponse(notes []*domain.Note, policy srs.Service) []NoteResponse {
	out := make([]NoteResponse, len(notes))
	for i, n := range notes {
		out[i] = noteToResponse(n, policy)
	}
	return out
}
