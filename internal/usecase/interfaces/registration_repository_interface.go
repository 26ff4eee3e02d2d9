package interfaces

import (
	"context"
	"encoding/json"

	"webinar_billing/internal/domain/entities"
)

// IRegistrationRepository abstracts DynamoDB persistence for Registration.
//
// The bridge must be able to:
//   - upsert a registration when an order is created (order id unique)
//   - find every registration carrying a given order id
//   - overwrite status + latest gateway payload, returning the prior status
//     and the new snapshot from the same write
type IRegistrationRepository interface {
	Upsert(ctx context.Context, r entities.Registration) (entities.Registration, error)
	ListByOrderID(ctx context.Context, orderID string) ([]entities.Registration, error)
	UpdateStatus(ctx context.Context, id string, status string, payload json.RawMessage) (entities.StatusChange, error)
}
