package notifier

import (
	"context"

	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
)

type Audience string

const (
	AudienceUser  Audience = "user"
	AudienceAdmin Audience = "admin"
)

// Notification is a status change addressed to one audience.
type Notification struct {
	Audience Audience                  `json:"audience"`
	Message  string                    `json:"message"`
	Event    models.StatusChangedEvent `json:"event"`
}

// Notifier delivers notifications. Delivery is best-effort; callers log and drop errors.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
