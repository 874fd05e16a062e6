package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Candle represents a single OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume,omitempty"`
}

// Series is an ordered sequence of candles, strictly increasing by timestamp.
// Transforms never mutate a Series in place; they return a new one.
type Series []Candle

// Validate checks the series invariants: strictly increasing timestamps,
// finite non-negative prices and low <= min(open,close) <= max(open,close) <= high.
func (s Series) Validate() error {
	for i, c := range s {
		for _, v := range [4]float64{c.Open, c.High, c.Low, c.Close} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("candle %d: non-finite price value", i)
			}
			if v < 0 {
				return fmt.Errorf("candle %d: negative price value", i)
			}
		}
		if c.Low > math.Min(c.Open, c.Close) || c.High < math.Max(c.Open, c.Close) {
			return fmt.Errorf("candle %d: high/low do not bound open/close", i)
		}
		if c.Volume < 0 {
			return fmt.Errorf("candle %d: negative volume", i)
		}
		if i > 0 && !s[i-1].Time.Before(c.Time) {
			return fmt.Errorf("candle %d: timestamp not after previous candle", i)
		}
	}
	return nil
}

// AssetType identifies the market segment a symbol belongs to. It drives
// the symbol canonicalization rules.
type AssetType string

const (
	AssetStock     AssetType = "stock"
	AssetForex     AssetType = "forex"
	AssetCommodity AssetType = "commodity"
	AssetCrypto    AssetType = "crypto"
	AssetIndex     AssetType = "index"
)

// ParseAssetType accepts user-facing names ("Stocks", "forex", ...) and
// returns the canonical AssetType. An empty string defaults to stock.
func ParseAssetType(s string) (AssetType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stock", "stocks", "":
		return AssetStock, nil
	case "forex", "fx":
		return AssetForex, nil
	case "commodity", "commodities":
		return AssetCommodity, nil
	case "crypto", "cryptocurrency":
		return AssetCrypto, nil
	case "index", "indices":
		return AssetIndex, nil
	default:
		return "", fmt.Errorf("unknown asset type %q", s)
	}
}

// Query is the raw user input: asset type, ticker and either an absolute
// start/end range or a relative period token. Constructed from UI input,
// normalized once, then discarded.
type Query struct {
	Asset    AssetType
	Symbol   string
	Start    time.Time // zero when Period is set
	End      time.Time // zero when Period is set
	Period   string    // relative token like "1mo", "1y"; empty for absolute
	Interval string
}

// NormalizedQuery is a Query after canonicalization: provider-ready symbol,
// resolved UTC range, allow-listed interval.
type NormalizedQuery struct {
	Symbol   string
	Start    time.Time
	End      time.Time
	Interval string
}

// Describe renders the query the way file names and logs show it.
func (nq NormalizedQuery) Describe() string {
	return fmt.Sprintf("%s %s %s..%s", nq.Symbol, nq.Interval,
		nq.Start.UTC().Format("2006-01-02"), nq.End.UTC().Format("2006-01-02"))
}
