// Package events provides a small in-process event bus.
//
// The reminder scan publishes a DueNotesReminder event per user with due
// notes; delivery (logging today, a mailer later) is a handler concern the
// scan knows nothing about.
package events
