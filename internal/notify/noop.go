package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoOpNotifier implements Notifier by logging discarded notifications. It is
// used when Discord (or another notification backend) is not configured.
// Create still hands out unique handles so edits are logged against them.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards notifications with a log
// message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Create logs and discards a new notification.
func (n *NoOpNotifier) Create(_ context.Context, payload *ItemPayload) (string, error) {
	handle := uuid.NewString()
	n.log.Debug("notification discarded (no backend configured)",
		"handle", handle,
		"title", payload.Title,
	)
	return handle, nil
}

// Edit logs and discards a notification edit.
func (n *NoOpNotifier) Edit(_ context.Context, handle string, payload *ItemPayload) error {
	n.log.Debug("notification edit discarded (no backend configured)",
		"handle", handle,
		"title", payload.Title,
	)
	return nil
}
