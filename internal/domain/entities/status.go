package entities

import "strings"

// Bucket is the coarse outcome class derived from a gateway status string.
type Bucket string

const (
	BucketPending Bucket = "pending"
	BucketSuccess Bucket = "success"
	BucketFailure Bucket = "failure"
)

var successStatuses = map[string]struct{}{
	"paid":       {},
	"success":    {},
	"order_paid": {},
}

var failureStatuses = map[string]struct{}{
	"failed":       {},
	"cancelled":    {},
	"user_dropped": {},
	"not_paid":     {},
	"active":       {},
	"timeout":      {},
}

// Classify maps a raw gateway status to its bucket. Unknown and empty
// statuses are pending.
func Classify(status string) Bucket {
	s := strings.ToLower(strings.TrimSpace(status))
	if _, ok := successStatuses[s]; ok {
		return BucketSuccess
	}
	if _, ok := failureStatuses[s]; ok {
		return BucketFailure
	}
	return BucketPending
}

// Terminal reports whether the bucket triggers a notification.
func (b Bucket) Terminal() bool {
	return b == BucketSuccess || b == BucketFailure
}
