package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/forgetmenot/internal/events"
	"github.com/phrazzld/forgetmenot/internal/platform/logger"
	"github.com/phrazzld/forgetmenot/internal/redact"
)

// LogNotifier handles reminder events by logging them. It stands in for a
// mail sender.
type LogNotifier struct {
	logger *slog.Logger
}

var _ events.EventHandler = (*LogNotifier)(nil)

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(l *slog.Logger) *LogNotifier {
	if l == nil {
		l = slog.Default()
	}
	return &LogNotifier{logger: l.With(slog.String("component", "reminder_notifier"))}
}

// HandleEvent implements events.EventHandler. Events of other types are
// ignored.
func (n *LogNotifier) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeDueNotesReminder {
		return nil
	}

	var r events.DueNotesReminder
	if err := event.UnmarshalPayload(&r); err != nil {
		return fmt.Errorf("failed to decode reminder payload: %w", err)
	}

	logger.FromContextOrDefault(ctx, n.logger).Info("due notes reminder",
		slog.String("event_id", event.ID.String()),
		slog.String("user_id", r.UserID.String()),
		slog.String("email", redact.Email(r.Email)),
		slog.String("greeting", "Hi "+r.FirstName),
		slog.Int("due_count", r.DueCount))
	return nil
}
