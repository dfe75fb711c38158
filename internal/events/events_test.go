package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	LastEvent    *Event
	HandlerError error
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestNewDueNotesReminderEvent(t *testing.T) {
	t.Parallel()

	scannedAt := time.Date(2024, 3, 5, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	reminder := DueNotesReminder{
		UserID:    uuid.New(),
		Email:     "ada@example.com",
		FirstName: "Ada",
		DueCount:  3,
		ScannedAt: scannedAt,
	}

	event, err := NewDueNotesReminderEvent(reminder)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeDueNotesReminder, event.Type)
	assert.True(t, event.CreatedAt.Equal(scannedAt))
	assert.Equal(t, time.UTC, event.CreatedAt.Location())

	var decoded DueNotesReminder
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, reminder.UserID, decoded.UserID)
	assert.Equal(t, 3, decoded.DueCount)
	assert.True(t, decoded.ScannedAt.Equal(scannedAt))
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewEvent("broken", make(chan int), time.Now())
	assert.Error(t, err)
}

func TestHandlerFunc(t *testing.T) {
	t.Parallel()

	var got *Event
	h := HandlerFunc(func(ctx context.Context, e *Event) error {
		got = e
		return nil
	})

	event, err := NewEvent("ping", map[string]string{"k": "v"}, time.Now())
	require.NoError(t, err)
	require.NoError(t, h.HandleEvent(context.Background(), event))
	assert.Same(t, event, got)
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()

	newEvent := func(t *testing.T) *Event {
		event, err := NewEvent("test-event", map[string]string{"key": "value"}, time.Now())
		require.NoError(t, err)
		return event
	}

	t.Run("emit event with no handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(nil)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(nil)
		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event := newEvent(t)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(nil)
		failingHandler := &MockEventHandler{HandlerError: errors.New("handler error")}
		successHandler := &MockEventHandler{}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		err := emitter.EmitEvent(context.Background(), newEvent(t))
		assert.EqualError(t, err, "handler error")
		assert.Equal(t, 1, failingHandler.HandledCount)
		assert.Equal(t, 1, successHandler.HandledCount)
	})
}
