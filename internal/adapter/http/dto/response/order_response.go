package response

import (
	"encoding/json"

	"webinar_billing/internal/usecase"
)

// CreateOrderResponse is returned by POST /api/createOrder. PaymentLink is
// null when the gateway response carries no hosted checkout URL.
type CreateOrderResponse struct {
	PaymentLink *string         `json:"payment_link"`
	CfData      json.RawMessage `json:"cfData" swaggertype:"object"`
}

func FromCreateOrderOutput(out usecase.CreateOrderOutput) CreateOrderResponse {
	return CreateOrderResponse{
		PaymentLink: out.PaymentLink,
		CfData:      nullIfEmpty(out.GatewayResponse),
	}
}

// CheckStatusResponse is returned by GET /api/checkStatus/:orderId.
type CheckStatusResponse struct {
	OrderID string          `json:"orderId"`
	Status  string          `json:"status"`
	CfData  json.RawMessage `json:"cfData" swaggertype:"object"`
}

func FromCheckStatusResult(res usecase.CheckStatusResult) CheckStatusResponse {
	return CheckStatusResponse{
		OrderID: res.OrderID,
		Status:  res.Status,
		CfData:  nullIfEmpty(res.GatewayResponse),
	}
}

// RouteNotFoundResponse is the body of every unmatched route.
type RouteNotFoundResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

func nullIfEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
