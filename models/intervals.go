package models

import "time"

// Supported bar intervals (Yahoo chart API codes).
var intervals = map[string]bool{
	"1m":  true,
	"5m":  true,
	"15m": true,
	"30m": true,
	"1h":  true,
	"1d":  true,
	"1wk": true,
	"1mo": true,
}

// ValidInterval reports whether the token is on the allow-list.
func ValidInterval(interval string) bool {
	return intervals[interval]
}

// Intraday reports whether the interval is finer than one day.
func Intraday(interval string) bool {
	switch interval {
	case "1m", "5m", "15m", "30m", "1h":
		return true
	}
	return false
}

// IntradayLookback returns the longest span the provider serves for a
// sub-daily interval. These limits mirror the Yahoo chart API and are
// enforced locally so a doomed query never leaves the process.
// Zero means the interval has no lookback cap (daily and coarser).
func IntradayLookback(interval string) time.Duration {
	const day = 24 * time.Hour
	switch interval {
	case "1m":
		return 7 * day
	case "5m", "15m", "30m":
		return 60 * day
	case "1h":
		return 730 * day
	default:
		return 0
	}
}

// CandlesPerDay estimates how many bars one day of data holds for the given
// interval, used to pre-size fetch buffers.
func CandlesPerDay(interval string) int {
	switch interval {
	case "1m":
		return 24 * 60
	case "5m":
		return 24 * 12
	case "15m":
		return 24 * 4
	case "30m":
		return 24 * 2
	case "1h":
		return 24
	default:
		// 1d and coarser: one bar covers at least a day
		return 1
	}
}

// EstimateCandles returns a buffer capacity for the span [start, end] at the
// given interval, with a small margin so appends rarely reallocate.
func EstimateCandles(interval string, start, end time.Time) int {
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	n := CandlesPerDay(interval) * days
	return n + n/10
}
