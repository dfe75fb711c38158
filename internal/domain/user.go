package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultReminderTime is the reminder time assigned to new users.
const DefaultReminderTime = "09:00"

// Common validation errors for User
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidReminderTime = errors.New("reminder time must use HH:MM")
)

var userValidator = validator.New()

// User is the owner of notes. Account management lives outside this
// service; the record here carries only what scheduling and reminders need.
type User struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	FirstName          *string   `json:"first_name,omitempty"`
	EmailNotifications bool      `json:"email_notifications"`
	DailyReminderTime  string    `json:"daily_reminder_time"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewUser creates a user opted in to reminders at DefaultReminderTime.
func NewUser(email string, firstName *string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:                 uuid.New(),
		Email:              strings.TrimSpace(email),
		FirstName:          firstName,
		EmailNotifications: true,
		DailyReminderTime:  DefaultReminderTime,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if err := userValidator.Var(u.Email, "email"); err != nil {
		return ErrInvalidEmail
	}
	if _, err := ParseReminderHour(u.DailyReminderTime); err != nil {
		return err
	}
	return nil
}

// ReminderHour returns the hour of day (0-23) the user wants reminders.
func (u *User) ReminderHour() (int, error) {
	return ParseReminderHour(u.DailyReminderTime)
}

// ParseReminderHour extracts the hour from an "HH:MM" time of day.
func ParseReminderHour(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidReminderTime, value)
	}
	return t.Hour(), nil
}

// DisplayName returns the first name, or a generic fallback.
func (u *User) DisplayName() string {
	if u.FirstName == nil || strings.TrimSpace(*u.FirstName) == "" {
		return "there"
	}
	return *u.FirstName
}
