package entities

import (
	"encoding/json"
	"errors"
	"time"
)

// StatusPaymentInitiated is the status a Registration carries between order
// creation and the first gateway notification.
const StatusPaymentInitiated = "payment_initiated"

// Registration is one registrant's payment attempt persisted by the bridge.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (order_id-index): order_id
//
// Gateway payloads:
//   - OrderPayload is the exact order request sent to Cashfree.
//   - GatewayResponse is the order-creation response.
//   - GatewayPayload is the latest webhook / status poll body observed.
//
// Status keeps the raw gateway string; use Classify to bucket it.
type Registration struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	WhatsApp string `json:"whatsapp"`
	Status   string `json:"status"`
	OrderID  string `json:"order_id"`

	OrderPayload    json.RawMessage `json:"order_payload,omitempty"`
	GatewayResponse json.RawMessage `json:"gateway_response,omitempty"`
	GatewayPayload  json.RawMessage `json:"gateway_payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bucket returns the outcome class of the current status.
func (r Registration) Bucket() Bucket {
	return Classify(r.Status)
}

// ReservedIDPrefix starts the ids of the store's order guard items; no
// registration may use it.
const ReservedIDPrefix = "order#"

// ErrReservedRegistrationID is returned when a registration id starts with
// ReservedIDPrefix.
var ErrReservedRegistrationID = errors.New("registration id uses a reserved prefix")

// ErrDuplicateOrderID is returned by the store when an order id is already
// bound to another registration.
var ErrDuplicateOrderID = errors.New("order id already bound to another registration")

// StatusChange is the result of one atomic status write: the status stored
// immediately before the write and the snapshot after it.
type StatusChange struct {
	PreviousStatus string
	Registration   Registration
}

// Found reports whether the registration existed when the write ran.
func (c StatusChange) Found() bool {
	return c.Registration.ID != ""
}

// Transitioned reports whether the write moved the registration to a
// different bucket.
func (c StatusChange) Transitioned() bool {
	return Classify(c.PreviousStatus) != c.Registration.Bucket()
}
