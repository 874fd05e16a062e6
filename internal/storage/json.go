package storage

import (
	"encoding/json"
	"os"

	"tradingui/models"
)

// jsonBar mirrors the crawler-style compact field names used on disk.
type jsonBar struct {
	Timestamp int64   `json:"t"` // epoch seconds, UTC
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    int64   `json:"v"`
}

// JSONSaver stores a series as a JSON array of bars.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(series models.Series, path string) error {
	bars := make([]jsonBar, 0, len(series))
	for _, c := range series {
		bars = append(bars, jsonBar{
			Timestamp: encodeTime(c.Time),
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		})
	}
	data, err := json.Marshal(bars)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (JSONSaver) Load(path string) (models.Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bars []jsonBar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, &models.ParseError{Path: path, Reason: err.Error()}
	}
	series := make(models.Series, 0, len(bars))
	for _, b := range bars {
		series = append(series, models.Candle{
			Time:   decodeTime(b.Timestamp),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	if err := series.Validate(); err != nil {
		return nil, &models.ParseError{Path: path, Reason: err.Error()}
	}
	return series, nil
}
