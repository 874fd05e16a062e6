// Package transform holds pure candle-series transforms.
package transform

import (
	"math"

	"tradingui/models"
)

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ToHeikinAshi converts a series to Heikin-Ashi bars. The open/close
// recurrence depends on the previous *output* bar, so this is a strictly
// sequential left-to-right fold. Timestamps and volume pass through.
// A single non-finite input value fails the whole transform; no partial
// output is ever returned.
func ToHeikinAshi(s models.Series) (models.Series, error) {
	if len(s) == 0 {
		return models.Series{}, nil
	}

	out := make(models.Series, 0, len(s))
	var prevOpen, prevClose float64
	for i, c := range s {
		if !finite(c.Open, c.High, c.Low, c.Close) {
			return nil, &models.TransformError{Index: i, Reason: "non-finite OHLC value"}
		}

		haClose := (c.Open + c.High + c.Low + c.Close) / 4
		var haOpen float64
		if i == 0 {
			haOpen = (c.Open + c.Close) / 2
		} else {
			haOpen = (prevOpen + prevClose) / 2
		}
		haHigh := math.Max(c.High, math.Max(haOpen, haClose))
		haLow := math.Min(c.Low, math.Min(haOpen, haClose))

		out = append(out, models.Candle{
			Time:   c.Time,
			Open:   haOpen,
			High:   haHigh,
			Low:    haLow,
			Close:  haClose,
			Volume: c.Volume,
		})
		prevOpen, prevClose = haOpen, haClose
	}
	return out, nil
}
