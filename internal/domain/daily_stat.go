package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day key format used for daily rollups.
const DateLayout = "2006-01-02"

// DailyStat aggregates one user's activity for one calendar day.
// There is at most one row per (UserID, Date).
type DailyStat struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Date           string    `json:"date"` // YYYY-MM-DD in the scheduling zone
	NotesRead      int       `json:"notes_read"`
	NotesCreated   int       `json:"notes_created"`
	TotalTimeSpent int       `json:"total_time_spent"`
}

// DayKey returns the rollup key for the calendar day t falls on in t's
// location.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// NoteStats is the per-user summary returned by the stats query.
type NoteStats struct {
	Total     int `json:"total"`
	DueToday  int `json:"due_today"`
	ReadToday int `json:"read_today"`
}
