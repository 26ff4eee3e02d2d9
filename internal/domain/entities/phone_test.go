package entities

import "testing"

func TestFormatPhone(t *testing.T) {
	cases := []struct {
		raw, cc, want string
	}{
		{"9876543210", "91", "+919876543210"},
		{"+91 98765-43210", "91", "+919876543210"},
		{"919876543210", "91", "+919876543210"},
		{"(415) 555 0100", "1", "+14155550100"},
		{"", "91", ""},
		{"abc", "91", ""},
	}
	for _, tc := range cases {
		if got := FormatPhone(tc.raw, tc.cc); got != tc.want {
			t.Fatalf("FormatPhone(%q, %q) = %q, want %q", tc.raw, tc.cc, got, tc.want)
		}
	}
}
