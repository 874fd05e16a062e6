package models

import "context"

// CandleFetcher fetches the candle series for a normalized query.
type CandleFetcher interface {
	GetCandles(ctx context.Context, query NormalizedQuery) (Series, error)
}
