package interfaces

import "context"

// IReplayGuard remembers webhook bodies already processed.
//
// FirstSeen holds a short claim on the body while it is processed; Confirm
// keeps it for the full replay window once processing succeeded and Forget
// drops it so a redelivery is processed again.
type IReplayGuard interface {
	FirstSeen(ctx context.Context, body []byte) (bool, error)
	Confirm(ctx context.Context, body []byte) error
	Forget(ctx context.Context, body []byte) error
}
