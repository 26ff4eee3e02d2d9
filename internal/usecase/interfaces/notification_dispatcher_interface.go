package interfaces

import (
	"context"

	"webinar_billing/internal/domain/entities"
)

// INotificationDispatcher fires registrant notifications. Implementations
// log their own failures; nothing is returned to the caller.
type INotificationDispatcher interface {
	NotifySuccess(ctx context.Context, r entities.Registration)
	NotifyFailure(ctx context.Context, r entities.Registration)
}
