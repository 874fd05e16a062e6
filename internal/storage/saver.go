// Package storage persists candle series as flat files under a local data
// directory and reads them back losslessly.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tradingui/models"
)

// Saver persists a series to a file and reads it back. Implementations are
// selected by format name; round-trips must be lossless for finite values.
type Saver interface {
	Save(series models.Series, path string) error
	Load(path string) (models.Series, error)
	Extension() string
}

// NewSaver creates an implementation by format (csv, json).
// Returns an error if the format is not supported.
func NewSaver(format string) (Saver, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}, nil
	case "json":
		return JSONSaver{}, nil
	default:
		return nil, fmt.Errorf("unsupported save format %q (use: csv, json)", format)
	}
}

// sanitizeSymbol strips characters that do not belong in file names
// (EURUSD=X -> EURUSDX, ^GSPC -> GSPC).
func sanitizeSymbol(symbol string) string {
	var b strings.Builder
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PathFor builds the save path for a query:
// {dir}/{SYMBOL}/{symbol}_{from}_to_{to}_{interval}.{ext}
func PathFor(dir string, nq models.NormalizedQuery, s Saver) string {
	symbol := sanitizeSymbol(nq.Symbol)
	name := fmt.Sprintf("%s_%s_to_%s_%s.%s",
		symbol,
		nq.Start.UTC().Format("2006-01-02"),
		nq.End.UTC().Format("2006-01-02"),
		nq.Interval,
		s.Extension(),
	)
	return filepath.Join(dir, symbol, name)
}

// Write saves the series under dir at the canonical path for the query,
// creating directories as needed, and returns the path.
func Write(dir string, nq models.NormalizedQuery, s Saver, series models.Series) (string, error) {
	path := PathFor(dir, nq, s)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	if err := s.Save(series, path); err != nil {
		return "", err
	}
	return path, nil
}

// List returns the saved files under dir with the given extension,
// relative to dir and sorted by name.
func List(dir, ext string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return filepath.SkipAll
			}
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), "."+ext) {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// timestamp formatting shared by savers: epoch seconds, UTC.
func encodeTime(t time.Time) int64   { return t.UTC().Unix() }
func decodeTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }
