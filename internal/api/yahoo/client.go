// Package yahoo implements the candle fetcher against the Yahoo Finance
// chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tradingui/models"

	httpClient "tradingui/internal/platform/http"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client is the Yahoo Finance chart API client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Yahoo client
type ClientOptions struct {
	BaseURL         string // override for tests
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new Yahoo Finance API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	// Apply defaults if not set
	if httpOpts.Timeout == 0 {
		httpOpts.Timeout = 30 * time.Second
	}
	if httpOpts.RequestsPerSec == 0 {
		httpOpts.RequestsPerSec = 5
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "yahoo_client").Logger(),
	}
}

// chartResponse is the response structure of the Yahoo chart endpoint.
// Quote arrays use interface{} because Yahoo emits null for missing bars.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if n, ok := v.(float64); ok {
		return n
	}
	return 0
}

// GetCandles fetches the candle series for a normalized query. Failures are
// reported as *models.FetchError so callers can distinguish network trouble,
// unknown symbols, provider rate limits and empty ranges.
func (c *Client) GetCandles(ctx context.Context, query models.NormalizedQuery) (models.Series, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s",
		c.baseURL,
		url.PathEscape(query.Symbol),
		query.Start.Unix(),
		query.End.Unix(),
		query.Interval,
	)

	c.logger.Debug().Str("url", u).Msg("Fetching candles")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &models.FetchError{Kind: models.FetchNetwork, Symbol: query.Symbol, Err: err}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, &models.FetchError{Kind: classifyHTTPError(err), Symbol: query.Symbol, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.FetchError{Kind: models.FetchNetwork, Symbol: query.Symbol, Err: err}
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, &models.FetchError{Kind: models.FetchNetwork, Symbol: query.Symbol, Err: err}
	}
	if chart.Chart.Error != nil {
		c.logger.Warn().
			Str("code", chart.Chart.Error.Code).
			Str("description", chart.Chart.Error.Description).
			Msg("Yahoo API error")
		return nil, &models.FetchError{
			Kind:   models.FetchNotFound,
			Symbol: query.Symbol,
			Err:    fmt.Errorf("%s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description),
		}
	}
	if len(chart.Chart.Result) == 0 ||
		len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, &models.FetchError{Kind: models.FetchEmpty, Symbol: query.Symbol}
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	series := make(models.Series, 0, models.EstimateCandles(query.Interval, query.Start, query.End))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		cl := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // skip null bars (holidays etc.)
		}
		series = append(series, models.Candle{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: int64(toFloat(quote.Volume[i])),
		})
	}

	if len(series) == 0 {
		return nil, &models.FetchError{Kind: models.FetchEmpty, Symbol: query.Symbol}
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	if err := series.Validate(); err != nil {
		return nil, &models.FetchError{Kind: models.FetchNetwork, Symbol: query.Symbol, Err: err}
	}

	c.logger.Debug().Int("count", len(series)).Msg("Fetched candles")
	return series, nil
}

func classifyHTTPError(err error) models.FetchKind {
	var statusErr *httpClient.HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusNotFound:
			return models.FetchNotFound
		case http.StatusTooManyRequests:
			return models.FetchRateLimited
		}
	}
	return models.FetchNetwork
}
