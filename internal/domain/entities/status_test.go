package entities

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		status string
		want   Bucket
	}{
		{"PAID", BucketSuccess},
		{"Success", BucketSuccess},
		{"order_paid", BucketSuccess},
		{" paid ", BucketSuccess},
		{"failed", BucketFailure},
		{"CANCELLED", BucketFailure},
		{"user_dropped", BucketFailure},
		{"NOT_PAID", BucketFailure},
		{"ACTIVE", BucketFailure},
		{"timeout", BucketFailure},
		{"pending", BucketPending},
		{"", BucketPending},
		{"payment_initiated", BucketPending},
		{"refunded", BucketPending},
	}

	for _, tc := range cases {
		if got := Classify(tc.status); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.status, got, tc.want)
		}
	}
}

func TestBucketTerminal(t *testing.T) {
	if !BucketSuccess.Terminal() || !BucketFailure.Terminal() {
		t.Fatalf("expected success and failure to be terminal")
	}
	if BucketPending.Terminal() {
		t.Fatalf("expected pending to be non-terminal")
	}
}

func TestRegistrationBucket(t *testing.T) {
	r := Registration{Status: "PAID"}
	if r.Bucket() != BucketSuccess {
		t.Fatalf("expected success bucket, got %s", r.Bucket())
	}
}
