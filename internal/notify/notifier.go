// Package notify defines the notification interface and implementations
// for sighting delivery.
package notify

import (
	"context"
	"time"
)

// ItemPayload is a rendered sighting notification.
type ItemPayload struct {
	Title        string
	Description  string
	URL          string
	Color        int
	Fields       []Field
	ThumbnailURL string
	ImageURL     string
	Timestamp    time.Time
}

// Field is one named block of a notification.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Notifier delivers sighting notifications. Create returns an opaque handle
// that identifies the delivered message; Edit replaces the message behind a
// handle in place.
type Notifier interface {
	Create(ctx context.Context, payload *ItemPayload) (string, error)
	Edit(ctx context.Context, handle string, payload *ItemPayload) error
}
