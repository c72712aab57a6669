package wager

import "math"

// ExpectedPayout computes the total payout in minor currency units for
// a stake at the given American price, stake included.
func ExpectedPayout(price int, stakeMinor int64) int64 {
	if price == 0 || stakeMinor <= 0 {
		return stakeMinor
	}
	var win int64
	if price > 0 {
		win = int64(math.Round(float64(price) / 100 * float64(stakeMinor)))
	} else {
		win = int64(math.Round(100 / math.Abs(float64(price)) * float64(stakeMinor)))
	}
	return win + stakeMinor
}
