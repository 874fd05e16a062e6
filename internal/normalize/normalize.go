// Package normalize turns raw user queries into canonical provider queries:
// upper-cased suffixed symbols, a resolved UTC date range and a validated
// interval. Pure functions of the input plus an injected reference instant.
package normalize

import (
	"strings"
	"time"

	"tradingui/models"
)

// commodityCodes maps common short codes to their futures tickers.
var commodityCodes = map[string]string{
	"GOLD":   "GC=F",
	"GC":     "GC=F",
	"OIL":    "CL=F",
	"CL":     "CL=F",
	"SILVER": "SI=F",
	"SI":     "SI=F",
}

// Symbol produces a provider-compatible ticker for the asset type:
// forex pairs get the =X quote suffix, commodities =F, crypto -USD,
// indices a ^ prefix. Stocks pass through upper-cased.
func Symbol(asset models.AssetType, ticker string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return "", models.Normalizef("ticker must be provided")
	}

	switch asset {
	case models.AssetForex:
		// EUR/USD or EURUSD -> EURUSD=X
		s := strings.ReplaceAll(symbol, "/", "")
		if !strings.HasSuffix(s, "=X") {
			s += "=X"
		}
		return s, nil
	case models.AssetCommodity:
		if mapped, ok := commodityCodes[symbol]; ok {
			return mapped, nil
		}
		if !strings.HasSuffix(symbol, "=F") {
			return symbol + "=F", nil
		}
		return symbol, nil
	case models.AssetCrypto:
		// BTC/USD -> BTC-USD; bare BTC -> BTC-USD
		if base, quote, ok := strings.Cut(symbol, "/"); ok {
			return base + "-" + quote, nil
		}
		if !strings.Contains(symbol, "-") {
			return symbol + "-USD", nil
		}
		return symbol, nil
	case models.AssetIndex:
		if !strings.HasPrefix(symbol, "^") {
			return "^" + symbol, nil
		}
		return symbol, nil
	default:
		return symbol, nil
	}
}

// periodStart resolves a relative period token against the reference end.
func periodStart(period string, end time.Time) (time.Time, error) {
	switch period {
	case "1d":
		return end.AddDate(0, 0, -1), nil
	case "5d":
		return end.AddDate(0, 0, -5), nil
	case "1mo":
		return end.AddDate(0, -1, 0), nil
	case "3mo":
		return end.AddDate(0, -3, 0), nil
	case "6mo":
		return end.AddDate(0, -6, 0), nil
	case "1y":
		return end.AddDate(-1, 0, 0), nil
	case "2y":
		return end.AddDate(-2, 0, 0), nil
	case "5y":
		return end.AddDate(-5, 0, 0), nil
	case "10y":
		return end.AddDate(-10, 0, 0), nil
	case "ytd":
		return time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	case "max":
		return time.Unix(0, 0).UTC(), nil
	default:
		return time.Time{}, models.Normalizef("unknown period %q", period)
	}
}

// Normalize validates and canonicalizes a query. now is the caller-supplied
// reference instant; relative periods resolve end = now.
func Normalize(q models.Query, now time.Time) (models.NormalizedQuery, error) {
	var nq models.NormalizedQuery

	symbol, err := Symbol(q.Asset, q.Symbol)
	if err != nil {
		return nq, err
	}

	interval := strings.TrimSpace(q.Interval)
	if interval == "" {
		interval = "1d"
	}
	if !models.ValidInterval(interval) {
		return nq, models.Normalizef("unsupported interval %q", interval)
	}

	now = now.UTC()
	var start, end time.Time
	if q.Period != "" {
		end = now
		start, err = periodStart(q.Period, end)
		if err != nil {
			return nq, err
		}
	} else {
		start, end = q.Start.UTC(), q.End.UTC()
		if start.IsZero() || end.IsZero() {
			return nq, models.Normalizef("either a period or both start and end are required")
		}
		if !start.Before(end) {
			return nq, models.Normalizef("start %s is not before end %s",
				start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
		if start.After(now) {
			return nq, models.Normalizef("start %s is in the future", start.Format("2006-01-02"))
		}
		if end.After(now) {
			end = now
		}
	}

	// Day granularity for daily and coarser bars.
	if !models.Intraday(interval) {
		start = start.Truncate(24 * time.Hour)
		end = end.Truncate(24 * time.Hour)
	}

	if !start.Before(end) {
		return nq, models.Normalizef("resolved range %s..%s is empty",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	if limit := models.IntradayLookback(interval); limit > 0 && end.Sub(start) > limit {
		return nq, models.Normalizef("interval %s supports at most %d days of history, requested %d",
			interval, int(limit.Hours()/24), int(end.Sub(start).Hours()/24))
	}

	nq.Symbol = symbol
	nq.Start = start
	nq.End = end
	nq.Interval = interval
	return nq, nil
}
