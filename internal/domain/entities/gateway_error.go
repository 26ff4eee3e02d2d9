package entities

import (
	"encoding/json"
	"fmt"
)

// GatewayError is returned when the payment gateway rejects or fails a call.
// Detail holds the upstream body so it can be surfaced to the caller.
type GatewayError struct {
	Operation  string
	StatusCode int
	Detail     json.RawMessage
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("gateway %s failed: status=%d body=%s", e.Operation, e.StatusCode, string(e.Detail))
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// DetailValue returns the upstream detail as a JSON value when it parses,
// otherwise as a string.
func (e *GatewayError) DetailValue() any {
	if len(e.Detail) > 0 && json.Valid(e.Detail) {
		return e.Detail
	}
	if len(e.Detail) > 0 {
		return string(e.Detail)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return nil
}
