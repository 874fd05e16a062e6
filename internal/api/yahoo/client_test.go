package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradingui/models"
)

const chartBody = `{"chart":{"result":[{"timestamp":[1704326400,1704240000,1704153600],
"indicators":{"quote":[{
"open":[187.15,null,186.06],
"high":[188.44,null,188.44],
"low":[183.89,null,183.89],
"close":[185.64,null,185.64],
"volume":[82488700,null,81964900]
}]}}],"error":null}}`

func testClient(url string) *Client {
	return NewClient(ClientOptions{
		BaseURL:        url,
		RequestTimeout: 5 * time.Second,
		RequestsPerSec: 100,
	})
}

func testQuery() models.NormalizedQuery {
	return models.NormalizedQuery{
		Symbol:   "AAPL",
		Start:    time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC),
		Interval: "1d",
	}
}

func TestGetCandles(t *testing.T) {
	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, chartBody)
	}))
	defer ts.Close()

	series, err := testClient(ts.URL).GetCandles(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("GetCandles() error: %v", err)
	}

	if gotPath != "/v8/finance/chart/AAPL" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "period1=1704153600&period2=1704326400&interval=1d" {
		t.Errorf("query = %q", gotQuery)
	}

	// null bar dropped, remaining bars sorted ascending
	if len(series) != 2 {
		t.Fatalf("len = %d, want 2", len(series))
	}
	if !series[0].Time.Before(series[1].Time) {
		t.Error("series not sorted ascending")
	}
	if series[0].Open != 186.06 || series[0].Volume != 81964900 {
		t.Errorf("first candle = %+v", series[0])
	}
	if err := series.Validate(); err != nil {
		t.Errorf("series invalid: %v", err)
	}
}

func TestGetCandlesErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantKind models.FetchKind
	}{
		{
			name: "http 404",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantKind: models.FetchNotFound,
		},
		{
			name: "provider error payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
			},
			wantKind: models.FetchNotFound,
		},
		{
			name: "empty result",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[]}}],"error":null}}`)
			},
			wantKind: models.FetchEmpty,
		},
		{
			name: "all bars null",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1704153600],"indicators":{"quote":[{"open":[null],"high":[null],"low":[null],"close":[null],"volume":[null]}]}}],"error":null}}`)
			},
			wantKind: models.FetchEmpty,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<html>not json</html>")
			},
			wantKind: models.FetchNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			_, err := testClient(ts.URL).GetCandles(context.Background(), testQuery())
			var fetchErr *models.FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("error = %v, want *models.FetchError", err)
			}
			if fetchErr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", fetchErr.Kind, tt.wantKind)
			}
		})
	}
}
