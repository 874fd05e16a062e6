package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tradingui/config"
	"tradingui/models"
)

type stubFetcher struct {
	series models.Series
	err    error
	calls  int
}

func (f *stubFetcher) GetCandles(ctx context.Context, nq models.NormalizedQuery) (models.Series, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func testSeries() models.Series {
	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	var s models.Series
	for i := 0; i < 5; i++ {
		price := 100 + float64(i)
		s = append(s, models.Candle{
			Time: base.AddDate(0, 0, i), Open: price, High: price + 2,
			Low: price - 1, Close: price + 1, Volume: 1000,
		})
	}
	return s
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		DataDir:         t.TempDir(),
		SaveFormat:      "csv",
		CORSOrigins:     []string{"http://localhost:8080"},
		RateLimitWindow: 60,
		LogLevel:        "error",
		RequestTimeout:  5,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, fetcher models.CandleFetcher) *Server {
	t.Helper()
	s, err := New(cfg, fetcher)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func get(h http.Handler, url string, mod ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	for _, m := range mod {
		m(req)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig(t), &stubFetcher{series: testSeries()})
	w := get(s.Handler(), "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestDownload(t *testing.T) {
	s := newTestServer(t, testConfig(t), &stubFetcher{series: testSeries()})
	w := get(s.Handler(), "/api/download?symbol=AAPL&period=1mo&interval=1d")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if lines[0] != "timestamp,open,high,low,close,volume" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 6 {
		t.Errorf("got %d lines, want header plus 5 rows", len(lines))
	}
}

func TestDownloadBadQuery(t *testing.T) {
	s := newTestServer(t, testConfig(t), &stubFetcher{series: testSeries()})
	tests := []string{
		"/api/download?symbol=AAPL&period=eternity",
		"/api/download?symbol=AAPL&period=1mo&interval=7m",
		"/api/download?symbol=&period=1mo",
		"/api/download?symbol=AAPL&start=2024-03-10&end=2024-03-01",
		"/api/download?symbol=AAPL&start=bogus&end=2024-03-01",
		"/api/download?asset=derivative&symbol=AAPL&period=1mo",
	}
	for _, url := range tests {
		if w := get(s.Handler(), url); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, w.Code)
		}
	}
}

func TestDownloadFetchErrors(t *testing.T) {
	tests := []struct {
		kind models.FetchKind
		want int
	}{
		{models.FetchNotFound, http.StatusNotFound},
		{models.FetchEmpty, http.StatusNotFound},
		{models.FetchRateLimited, http.StatusTooManyRequests},
		{models.FetchNetwork, http.StatusBadGateway},
	}
	for _, tt := range tests {
		s := newTestServer(t, testConfig(t), &stubFetcher{
			err: &models.FetchError{Kind: tt.kind, Symbol: "AAPL"},
		})
		w := get(s.Handler(), "/api/download?symbol=AAPL&period=1mo")
		if w.Code != tt.want {
			t.Errorf("kind %v: status = %d, want %d", tt.kind, w.Code, tt.want)
		}
	}
}

func TestDownloadSaves(t *testing.T) {
	cfg := testConfig(t)
	s := newTestServer(t, cfg, &stubFetcher{series: testSeries()})
	w := get(s.Handler(), "/api/download?symbol=AAPL&period=1mo&save=true")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	fw := get(s.Handler(), "/api/files")
	if fw.Code != http.StatusOK {
		t.Fatalf("files status = %d", fw.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(fw.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body["files"]) != 1 {
		t.Errorf("files = %v, want one entry", body["files"])
	}
}

func TestBasicAuth(t *testing.T) {
	cfg := testConfig(t)
	cfg.APIUser = "user"
	cfg.APIPass = "secret"
	s := newTestServer(t, cfg, &stubFetcher{series: testSeries()})
	h := s.Handler()

	w := get(h, "/api/download?symbol=AAPL&period=1mo")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no creds: status = %d, want 401", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("WWW-Authenticate"), "Basic") {
		t.Error("missing WWW-Authenticate challenge")
	}

	w = get(h, "/api/download?symbol=AAPL&period=1mo", func(r *http.Request) {
		r.SetBasicAuth("user", "wrong")
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", w.Code)
	}

	w = get(h, "/api/download?symbol=AAPL&period=1mo", func(r *http.Request) {
		r.SetBasicAuth("user", "secret")
	})
	if w.Code != http.StatusOK {
		t.Errorf("valid creds: status = %d, want 200", w.Code)
	}

	// health stays open
	if w := get(h, "/api/health"); w.Code != http.StatusOK {
		t.Errorf("health: status = %d, want 200", w.Code)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, testConfig(t), &stubFetcher{series: testSeries()})
	h := s.Handler()

	w := get(h, "/api/health", func(r *http.Request) {
		r.Header.Set("Origin", "http://localhost:8080")
	})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8080" {
		t.Errorf("allowed origin not echoed, got %q", got)
	}

	w = get(h, "/api/health", func(r *http.Request) {
		r.Header.Set("Origin", "http://evil.example")
	})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got %q", got)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/download", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitMax = 2
	cfg.RateLimitWindow = 60
	s := newTestServer(t, cfg, &stubFetcher{series: testSeries()})
	h := s.Handler()

	for i := 0; i < 2; i++ {
		if w := get(h, "/api/download?symbol=AAPL&period=1mo"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}
	if w := get(h, "/api/download?symbol=AAPL&period=1mo"); w.Code != http.StatusTooManyRequests {
		t.Errorf("third request: status = %d, want 429", w.Code)
	}
	// health is not limited
	if w := get(h, "/api/health"); w.Code != http.StatusOK {
		t.Errorf("health: status = %d, want 200", w.Code)
	}
}

func TestCacheServedWhenFetchFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheDir = t.TempDir()
	fetcher := &stubFetcher{series: testSeries()}
	s := newTestServer(t, cfg, fetcher)
	h := s.Handler()

	w := get(h, "/api/download?symbol=AAPL&period=1mo")
	if w.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", w.Code)
	}
	first := w.Body.String()

	fetcher.err = &models.FetchError{Kind: models.FetchNetwork, Symbol: "AAPL"}
	w = get(h, "/api/download?symbol=AAPL&period=1mo")
	if w.Code != http.StatusOK {
		t.Fatalf("cached request: status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Body.String() != first {
		t.Error("cached body differs from original download")
	}

	// a different range has no cache entry and surfaces the failure
	w = get(h, "/api/download?symbol=AAPL&period=3mo")
	if w.Code != http.StatusBadGateway {
		t.Errorf("uncached request: status = %d, want 502", w.Code)
	}
}

func TestChart(t *testing.T) {
	s := newTestServer(t, testConfig(t), &stubFetcher{series: testSeries()})
	h := s.Handler()

	for _, style := range []string{"line", "candle", "heikin"} {
		w := get(h, "/api/chart?symbol=AAPL&period=1mo&style="+style)
		if w.Code != http.StatusOK {
			t.Fatalf("style %s: status = %d", style, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("style %s: Content-Type = %q", style, ct)
		}
		if !strings.Contains(w.Body.String(), "echarts") {
			t.Errorf("style %s: no chart markup in response", style)
		}
	}

	if w := get(h, "/api/chart?symbol=AAPL&period=1mo&style=renko"); w.Code != http.StatusBadRequest {
		t.Errorf("unknown style: status = %d, want 400", w.Code)
	}
}
