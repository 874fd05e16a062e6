// Package server implements the HTTP proxy and browser UI: CSV downloads,
// chart pages and saved-file listings over the fetch client, gated by
// CORS, optional basic auth and a request rate limit.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"tradingui/config"
	"tradingui/internal/chart"
	"tradingui/internal/normalize"
	"tradingui/internal/storage"
	"tradingui/models"
)

// Server wires the fetch client, storage and chart rendering behind the
// HTTP surface. It holds no per-request state.
type Server struct {
	cfg     *config.Config
	fetcher models.CandleFetcher
	saver   storage.Saver
	limiter *rate.Limiter
	now     func() time.Time
	logger  zerolog.Logger
}

// New creates a Server for the given configuration and fetch client.
func New(cfg *config.Config, fetcher models.CandleFetcher) (*Server, error) {
	saver, err := storage.NewSaver(cfg.SaveFormat)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:     cfg,
		fetcher: fetcher,
		saver:   saver,
		limiter: newLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
		now:     func() time.Time { return time.Now().UTC() },
		logger:  log.With().Str("component", "server").Logger(),
	}, nil
}

// Handler returns the routed handler with the middleware chain applied.
// Health stays outside the auth and rate-limit gates.
func (s *Server) Handler() http.Handler {
	gate := func(h http.HandlerFunc) http.Handler {
		return s.withRateLimit(s.withAuth(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.Handle("/api/download", gate(s.handleDownload))
	mux.Handle("/api/chart", gate(s.handleChart))
	mux.Handle("/api/files", gate(s.handleFiles))
	mux.HandleFunc("/", s.handleIndex)

	return s.withLogging(s.withCORS(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// queryFrom builds a raw query from request parameters.
func queryFrom(r *http.Request) (models.Query, error) {
	var q models.Query

	asset, err := models.ParseAssetType(r.URL.Query().Get("asset"))
	if err != nil {
		return q, err
	}
	q.Asset = asset
	q.Symbol = r.URL.Query().Get("symbol")
	q.Period = r.URL.Query().Get("period")
	q.Interval = r.URL.Query().Get("interval")

	if q.Period == "" {
		if v := r.URL.Query().Get("start"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return q, fmt.Errorf("invalid start date %q, use YYYY-MM-DD", v)
			}
			q.Start = t
		}
		if v := r.URL.Query().Get("end"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return q, fmt.Errorf("invalid end date %q, use YYYY-MM-DD", v)
			}
			q.End = t
		}
		if q.Start.IsZero() && q.End.IsZero() {
			// neither period nor dates given: default to the last month
			q.Period = "1mo"
		}
	}
	return q, nil
}

// fetchSeries fetches candles for the query, falling back to the cached
// copy when the provider fails and a cache is configured. On success the
// cache is refreshed.
func (s *Server) fetchSeries(r *http.Request, nq models.NormalizedQuery) (models.Series, error) {
	series, fetchErr := s.fetcher.GetCandles(r.Context(), nq)
	if fetchErr == nil {
		s.writeCache(nq, series)
		return series, nil
	}

	if s.cfg.CacheDir != "" {
		cachePath := storage.PathFor(s.cfg.CacheDir, nq, storage.CSVSaver{})
		if cached, err := (storage.CSVSaver{}).Load(cachePath); err == nil {
			s.logger.Warn().Err(fetchErr).Str("cache", cachePath).Msg("provider failed, serving cached copy")
			return cached, nil
		}
	}
	return nil, fetchErr
}

func (s *Server) writeCache(nq models.NormalizedQuery, series models.Series) {
	if s.cfg.CacheDir == "" {
		return
	}
	if _, err := storage.Write(s.cfg.CacheDir, nq, storage.CSVSaver{}, series); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write cache")
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	q, err := queryFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	nq, err := normalize.Normalize(q, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := s.fetchSeries(r, nq)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	if r.URL.Query().Get("save") == "true" || r.URL.Query().Get("save") == "1" {
		path, err := storage.Write(s.cfg.DataDir, nq, s.saver, series)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to save series")
		} else {
			s.logger.Info().Str("path", path).Int("candles", len(series)).Msg("saved series")
		}
	}

	var buf bytes.Buffer
	if err := storage.WriteCSV(&buf, series); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	style, err := chart.ParseStyle(r.URL.Query().Get("style"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := queryFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	nq, err := normalize.Normalize(q, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := s.fetchSeries(r, nq)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.Render(w, series, style, nq.Describe()); err != nil {
		s.logger.Error().Err(err).Msg("chart render failed")
	}
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	files, err := storage.List(s.cfg.DataDir, s.saver.Extension())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"files": files})
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>tradingui</title></head>
<body>
<h1>tradingui</h1>
<form action="/api/chart" method="get">
  <select name="asset">
    <option value="stock">Stocks</option>
    <option value="forex">Forex</option>
    <option value="commodity">Commodities</option>
    <option value="crypto">Crypto</option>
    <option value="index">Index</option>
  </select>
  <input name="symbol" placeholder="AAPL, EUR/USD, GC" required>
  <select name="period">
    <option>1d</option><option>5d</option><option selected>1mo</option>
    <option>3mo</option><option>6mo</option><option>1y</option>
    <option>5y</option><option>max</option>
  </select>
  <select name="interval">
    <option selected>1d</option><option>1wk</option><option>1mo</option>
    <option>1m</option><option>5m</option><option>1h</option>
  </select>
  <select name="style">
    <option selected>line</option><option>candle</option><option>heikin</option>
  </select>
  <button type="submit">Chart</button>
</form>
<p><a href="/api/files">Saved files</a> &middot; <a href="/api/health">Health</a></p>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

// statusFor maps error kinds to HTTP statuses.
func statusFor(err error) int {
	var normErr *models.NormalizationError
	if errors.As(err, &normErr) {
		return http.StatusBadRequest
	}
	var fetchErr *models.FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.Kind {
		case models.FetchNotFound, models.FetchEmpty:
			return http.StatusNotFound
		case models.FetchRateLimited:
			return http.StatusTooManyRequests
		default:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// EnsureDirs makes sure the data and cache directories exist before serving.
func (s *Server) EnsureDirs() error {
	for _, dir := range []string{s.cfg.DataDir, s.cfg.CacheDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Clean(dir), 0755); err != nil {
			return err
		}
	}
	return nil
}
