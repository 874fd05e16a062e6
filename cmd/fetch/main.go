// Command fetch downloads a historical candle series, saves it under the
// data directory and optionally renders a chart HTML file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tradingui/config"
	"tradingui/internal/api/yahoo"
	"tradingui/internal/chart"
	"tradingui/internal/normalize"
	"tradingui/internal/storage"
	"tradingui/models"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	var (
		asset    = flag.String("asset", "stock", "asset type: stock, forex, commodity, crypto, index")
		symbol   = flag.String("symbol", "", "ticker symbol (e.g. AAPL, EUR/USD, GC)")
		period   = flag.String("period", "", "relative period (1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max)")
		start    = flag.String("start", "", "start date YYYY-MM-DD (with -end, instead of -period)")
		end      = flag.String("end", "", "end date YYYY-MM-DD")
		interval = flag.String("interval", "1d", "bar interval (1m, 5m, 15m, 30m, 1h, 1d, 1wk, 1mo)")
		format   = flag.String("format", "", "save format: csv, json (default from config)")
		chartOut = flag.String("chart", "", "write a chart HTML file to this path")
		style    = flag.String("style", "line", "chart style: line, candle, heikin")
		noSave   = flag.Bool("no-save", false, "skip saving the series to the data dir")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	if *symbol == "" {
		flag.Usage()
		log.Fatal().Msg("-symbol is required")
	}

	q := models.Query{Symbol: *symbol, Period: *period, Interval: *interval}
	q.Asset, err = models.ParseAssetType(*asset)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid asset type")
	}
	if *period == "" {
		q.Start, q.End, err = parseDates(*start, *end)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid date range")
		}
	}

	nq, err := normalize.Normalize(q, time.Now().UTC())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid query")
	}
	log.Info().Str("query", nq.Describe()).Msg("fetching")

	client := yahoo.NewClient(yahoo.ClientOptions{
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
	})
	series, err := client.GetCandles(context.Background(), nq)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch failed")
	}
	log.Info().Int("candles", len(series)).Msg("fetched")

	if !*noSave {
		saveFormat := cfg.SaveFormat
		if *format != "" {
			saveFormat = *format
		}
		saver, err := storage.NewSaver(saveFormat)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid save format")
		}
		path, err := storage.Write(cfg.DataDir, nq, saver, series)
		if err != nil {
			log.Fatal().Err(err).Msg("save failed")
		}
		log.Info().Str("path", path).Msg("saved")
	}

	if *chartOut != "" {
		st, err := chart.ParseStyle(*style)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid chart style")
		}
		f, err := os.Create(*chartOut)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot create chart file")
		}
		defer f.Close()
		if err := chart.Render(f, series, st, nq.Describe()); err != nil {
			log.Fatal().Err(err).Msg("chart render failed")
		}
		log.Info().Str("path", *chartOut).Msg("chart written")
	}
}

func parseDates(start, end string) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("either -period or both -start and -end are required")
	}
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return s, e, nil
}
