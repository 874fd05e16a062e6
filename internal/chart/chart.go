// Package chart renders candle series as self-contained HTML charts.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"tradingui/internal/transform"
	"tradingui/models"
)

// Style selects the rendering of a series.
type Style string

const (
	StyleLine   Style = "line"
	StyleCandle Style = "candle"
	StyleHeikin Style = "heikin"
)

// ParseStyle validates a user-supplied style token.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StyleLine, StyleCandle, StyleHeikin:
		return Style(s), nil
	case "":
		return StyleLine, nil
	default:
		return "", fmt.Errorf("supported styles: line, candle, heikin")
	}
}

// timeLayout for axis labels; sub-daily bars keep the clock time.
func timeLayout(s models.Series) string {
	for _, c := range s {
		if h, m, sec := c.Time.Clock(); h != 0 || m != 0 || sec != 0 {
			return "2006-01-02 15:04"
		}
	}
	return "2006-01-02"
}

// Render writes an HTML chart of the series to w. The heikin style converts
// the series first; a failed conversion renders nothing.
func Render(w io.Writer, series models.Series, style Style, title string) error {
	switch style {
	case StyleLine:
		return renderLine(w, series, title)
	case StyleCandle:
		return renderKline(w, series, title)
	case StyleHeikin:
		ha, err := transform.ToHeikinAshi(series)
		if err != nil {
			return err
		}
		return renderKline(w, ha, title+" (Heikin-Ashi)")
	default:
		return fmt.Errorf("supported styles: line, candle, heikin")
	}
}

func renderLine(w io.Writer, series models.Series, title string) error {
	layout := timeLayout(series)
	x := make([]string, 0, len(series))
	y := make([]opts.LineData, 0, len(series))
	for _, c := range series {
		x = append(x, c.Time.Format(layout))
		y = append(y, opts.LineData{Value: c.Close})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(x).AddSeries("close", y)
	return line.Render(w)
}

func renderKline(w io.Writer, series models.Series, title string) error {
	layout := timeLayout(series)
	x := make([]string, 0, len(series))
	y := make([]opts.KlineData, 0, len(series))
	for _, c := range series {
		x = append(x, c.Time.Format(layout))
		// echarts kline order: open, close, low, high
		y = append(y, opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}})
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	kline.SetXAxis(x).AddSeries("ohlc", y)
	return kline.Render(w)
}
