package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field limits for notes
const (
	MaxNoteTitleLength   = 200
	MaxNoteContentLength = 5000
	MaxNoteTags          = 20
	MaxTagLength         = 50
)

// Common validation errors for Note
var (
	ErrEmptyNoteID          = errors.New("note ID cannot be empty")
	ErrEmptyNoteUserID      = errors.New("note user ID cannot be empty")
	ErrEmptyNoteContent     = errors.New("note content cannot be empty")
	ErrNoteContentTooLong   = errors.New("note content is too long")
	ErrNoteTitleTooLong     = errors.New("note title is too long")
	ErrTooManyTags          = errors.New("note has too many tags")
	ErrTagTooLong           = errors.New("note tag is too long")
	ErrNegativeReadCount    = errors.New("read count cannot be negative")
	ErrEmptyNextReadDate    = errors.New("next read date cannot be empty")
	ErrEmptyNoteCategoryRef = errors.New("note category ID cannot be the nil UUID")
)

// Note is a piece of free text a user wants to re-read on a schedule.
// ReadCount and NextReadDate are owned by the scheduler and never set from
// user input.
type Note struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	Title        *string      `json:"title,omitempty"`
	Content      string       `json:"content"`
	Tags         []string     `json:"tags"`
	CategoryID   *uuid.UUID   `json:"category_id,omitempty"`
	Category     *Category    `json:"category,omitempty"`
	ReadCount    int          `json:"read_count"`
	NextReadDate time.Time    `json:"next_read_date"`
	LastReadDate *time.Time   `json:"last_read_date,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	History      []*ReadEvent `json:"history,omitempty"`
}

// NoteFields holds the user-editable parts of a note.
type NoteFields struct {
	Title      *string
	Content    string
	Tags       []string
	CategoryID *uuid.UUID
}

// NotePatch holds a partial update. Nil fields are left unchanged.
// ClearCategory detaches the note from its category and wins over CategoryID.
type NotePatch struct {
	Title         *string
	Content       *string
	Tags          []string
	SetTags       bool
	CategoryID    *uuid.UUID
	ClearCategory bool
}

// IsEmpty reports whether the patch changes nothing.
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && !p.SetTags && p.CategoryID == nil && !p.ClearCategory
}

// NewNote creates an unread note scheduled for nextReadDate.
// Tags are trimmed and de-duplicated. Returns an error if validation fails.
func NewNote(userID uuid.UUID, fields NoteFields, nextReadDate, now time.Time) (*Note, error) {
	note := &Note{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        normalizeTitle(fields.Title),
		Content:      fields.Content,
		Tags:         NormalizeTags(fields.Tags),
		CategoryID:   fields.CategoryID,
		ReadCount:    0,
		NextReadDate: nextReadDate,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}

	return note, nil
}

// Validate checks if the Note has valid data.
// Returns an error if any field fails validation.
func (n *Note) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNoteID
	}
	if n.UserID == uuid.Nil {
		return ErrEmptyNoteUserID
	}
	if strings.TrimSpace(n.Content) == "" {
		return NewValidationError("content", "is required", ErrEmptyNoteContent)
	}
	if utf8.RuneCountInString(n.Content) > MaxNoteContentLength {
		return NewValidationError("content", "must be at most 5000 characters", ErrNoteContentTooLong)
	}
	if n.Title != nil && utf8.RuneCountInString(*n.Title) > MaxNoteTitleLength {
		return NewValidationError("title", "must be at most 200 characters", ErrNoteTitleTooLong)
	}
	if len(n.Tags) > MaxNoteTags {
		return NewValidationError("tags", "must contain at most 20 entries", ErrTooManyTags)
	}
	for _, tag := range n.Tags {
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return NewValidationError("tags", "entries must be at most 50 characters", ErrTagTooLong)
		}
	}
	if n.CategoryID != nil && *n.CategoryID == uuid.Nil {
		return NewValidationError("category_id", "is invalid", ErrEmptyNoteCategoryRef)
	}
	if n.ReadCount < 0 {
		return ErrNegativeReadCount
	}
	if n.NextReadDate.IsZero() {
		return ErrEmptyNextReadDate
	}
	return nil
}

// MarkRead advances the note by one read: it increments ReadCount, stores
// the next read date computed by the caller for the new count, and stamps
// LastReadDate.
func (n *Note) MarkRead(nextReadDate, now time.Time) {
	readAt := now.UTC()
	n.ReadCount++
	n.NextReadDate = nextReadDate
	n.LastReadDate = &readAt
	n.UpdatedAt = readAt
}

// Apply applies a partial update and re-validates the note.
// On error the note is left unchanged.
func (n *Note) Apply(patch NotePatch, now time.Time) error {
	updated := *n
	if patch.Title != nil {
		updated.Title = normalizeTitle(patch.Title)
	}
	if patch.Content != nil {
		updated.Content = *patch.Content
	}
	if patch.SetTags {
		updated.Tags = NormalizeTags(patch.Tags)
	}
	switch {
	case patch.ClearCategory:
		updated.CategoryID = nil
		updated.Category = nil
	case patch.CategoryID != nil:
		id := *patch.CategoryID
		updated.CategoryID = &id
		updated.Category = nil
	}
	updated.UpdatedAt = now.UTC()

	if err := updated.Validate(); err != nil {
		return err
	}
	*n = updated
	return nil
}

// NormalizeTags trims whitespace, drops empty tags and removes duplicates
// while keeping the first occurrence order. It never returns nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// normalizeTitle treats a blank title as no title.
func normalizeTitle(title *string) *string {
	if title == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*title)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
