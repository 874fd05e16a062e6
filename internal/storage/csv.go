package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"tradingui/models"
)

// csvHeader is the fixed column layout. Timestamps are epoch seconds, UTC.
var csvHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// CSVSaver stores a series as CSV (header: timestamp,open,high,low,close,volume).
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(series models.Series, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, series)
}

// WriteCSV streams the series in the fixed CSV layout. Shared by the file
// saver and the proxy download endpoint.
func WriteCSV(out io.Writer, series models.Series) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range series {
		if err := w.Write([]string{
			strconv.FormatInt(encodeTime(c.Time), 10),
			floatStr(c.Open),
			floatStr(c.High),
			floatStr(c.Low),
			floatStr(c.Close),
			strconv.FormatInt(c.Volume, 10),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Load reads a CSV file written by Save. A malformed header or row aborts
// the load with a *models.ParseError; rows are never silently skipped.
func (CSVSaver) Load(path string) (models.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, &models.ParseError{Path: path, Reason: err.Error()}
	}
	if len(records) == 0 {
		return nil, &models.ParseError{Path: path, Line: 1, Reason: "missing header row"}
	}
	for i, col := range csvHeader {
		if records[0][i] != col {
			return nil, &models.ParseError{Path: path, Line: 1,
				Reason: fmt.Sprintf("unexpected header column %q, want %q", records[0][i], col)}
		}
	}

	series := make(models.Series, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		sec, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, &models.ParseError{Path: path, Line: line, Reason: "bad timestamp: " + rec[0]}
		}
		var prices [4]float64
		for j := 0; j < 4; j++ {
			v, err := strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				return nil, &models.ParseError{Path: path, Line: line,
					Reason: fmt.Sprintf("bad %s value: %s", csvHeader[j+1], rec[j+1])}
			}
			prices[j] = v
		}
		volume, err := strconv.ParseInt(rec[5], 10, 64)
		if err != nil {
			return nil, &models.ParseError{Path: path, Line: line, Reason: "bad volume: " + rec[5]}
		}
		series = append(series, models.Candle{
			Time:   decodeTime(sec),
			Open:   prices[0],
			High:   prices[1],
			Low:    prices[2],
			Close:  prices[3],
			Volume: volume,
		})
	}

	if err := series.Validate(); err != nil {
		return nil, &models.ParseError{Path: path, Reason: err.Error()}
	}
	return series, nil
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
