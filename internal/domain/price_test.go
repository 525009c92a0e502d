package domain

import "testing"

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"₹1,299", 1299},
		{"$12.50", 12.50},
		{"1299", 1299},
		{"₹ 2,499.00", 2499},
		{"", 0},
		{"free", 0},
		{"1.2.3", 0},
	}

	for _, tc := range cases {
		if got := ParsePrice(tc.in); got != tc.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
