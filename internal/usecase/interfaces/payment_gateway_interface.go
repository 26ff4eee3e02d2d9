package interfaces

import (
	"context"
	"encoding/json"

	"webinar_billing/internal/domain/entities"
)

// IPaymentGateway abstracts the Cashfree PG orders API.
//
// Responses are returned raw so they can be persisted for traceability.
type IPaymentGateway interface {
	CreateOrder(ctx context.Context, req entities.OrderRequest) (json.RawMessage, error)
	GetOrder(ctx context.Context, orderID string) (json.RawMessage, error)
}
