package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser(" demo@forgetmenot.app ", strPtr("Demo"))
	require.NoError(t, err)
	assert.Equal(t, "demo@forgetmenot.app", user.Email)
	assert.True(t, user.EmailNotifications)
	assert.Equal(t, DefaultReminderTime, user.DailyReminderTime)
	assert.Equal(t, "Demo", user.DisplayName())

	hour, err := user.ReminderHour()
	require.NoError(t, err)
	assert.Equal(t, 9, hour)
}

func TestUser_Validate(t *testing.T) {
	t.Parallel()
	valid := func() User {
		return User{ID: uuid.New(), Email: "a@b.co", DailyReminderTime: "18:30"}
	}

	testCases := []struct {
		name     string
		mutate   func(*User)
		expected error
	}{
		{name: "missing id", mutate: func(u *User) { u.ID = uuid.Nil }, expected: ErrEmptyUserID},
		{name: "missing email", mutate: func(u *User) { u.Email = "" }, expected: ErrEmptyEmail},
		{name: "bad email", mutate: func(u *User) { u.Email = "not-an-email" }, expected: ErrInvalidEmail},
		{name: "bad reminder time", mutate: func(u *User) { u.DailyReminderTime = "25:00" }, expected: ErrInvalidReminderTime},
		{name: "valid", mutate: func(u *User) {}, expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			u := valid()
			tc.mutate(&u)
			err := u.Validate()
			if tc.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestDisplayNameFallback(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "there", (&User{}).DisplayName())
	assert.Equal(t, "there", (&User{FirstName: strPtr(" ")}).DisplayName())
}

func TestReadEvent_Validate(t *testing.T) {
	t.Parallel()
	now := time.Now()
	negative := -1
	zero := 0

	_, err := NewReadEvent(uuid.New(), uuid.New(), &negative, now)
	assert.ErrorIs(t, err, ErrNegativeTimeSpent)
	assert.ErrorIs(t, err, ErrValidation)

	event, err := NewReadEvent(uuid.New(), uuid.New(), &zero, now)
	require.NoError(t, err)
	assert.Equal(t, now.UTC(), event.ReadDate)

	event, err = NewReadEvent(uuid.New(), uuid.New(), nil, now)
	require.NoError(t, err)
	assert.Nil(t, event.TimeSpent)

	_, err = NewReadEvent(uuid.Nil, uuid.New(), nil, now)
	assert.ErrorIs(t, err, ErrEmptyReadEventNoteID)
}

func TestDayKey(t *testing.T) {
	t.Parallel()
	tokyo := time.FixedZone("JST", 9*3600)
	ts := time.Date(2024, time.March, 31, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-31", DayKey(ts))
	assert.Equal(t, "2024-04-01", DayKey(ts.In(tokyo)))
}

func TestNewCategory(t *testing.T) {
	t.Parallel()
	c, err := NewCategory(uuid.New(), "  Général ", strPtr("#FFE9D0"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Général", c.Name)

	_, err = NewCategory(uuid.New(), " ", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyCategoryName)
}
