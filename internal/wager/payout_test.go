package wager

import "testing"

func TestExpectedPayout(t *testing.T) {
	tests := []struct {
		price    int
		stake    int64
		expected int64
	}{
		{150, 1000, 2500},   // +150: win 1500
		{-110, 1000, 1909},  // -110: win round(909.09)
		{100, 1000, 2000},   // even money
		{-200, 1000, 1500},  // win 500
		{-110, 100, 191},    // probe stake: win round(90.9)
		{250, 200, 700},     // win 500
		{0, 1000, 1000},     // no price, stake back
		{-110, 0, 0},        // no stake
	}

	for _, tt := range tests {
		if got := ExpectedPayout(tt.price, tt.stake); got != tt.expected {
			t.Errorf("ExpectedPayout(%d, %d) = %d, want %d", tt.price, tt.stake, got, tt.expected)
		}
	}
}
