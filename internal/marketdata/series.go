package marketdata

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Vivek1819/FinBoard/internal/models"
)

// Candidate payload keys per interval. Adjusted variants come second; the
// first key present wins.
var seriesKeys = map[string][]string{
	"daily":   {"Time Series (Daily)", "Time Series (Daily Adjusted)"},
	"weekly":  {"Weekly Time Series", "Weekly Adjusted Time Series"},
	"monthly": {"Monthly Time Series"},
}

// Trailing window sizes applied by the polling layer.
var seriesWindow = map[string]int{
	"daily":   120,
	"weekly":  104,
	"monthly": 120,
}

// NormalizeSeries converts an Alpha Vantage style OHLC payload into candle
// points sorted ascending by timestamp. Input key order is not trusted. A
// payload without any candidate series key yields an empty list.
func NormalizeSeries(raw json.RawMessage, interval string) []models.CandlePoint {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil
	}

	series := findSeries(root, seriesKeys[interval])
	if !series.Exists() || !series.IsObject() {
		return nil
	}

	// The "1. open" style keys carry a literal dot, which must be escaped
	// so gjson does not split them as paths.
	var points []models.CandlePoint
	series.ForEach(func(key, entry gjson.Result) bool {
		points = append(points, models.CandlePoint{
			Time:  key.String(),
			Open:  entry.Get(`1\. open`).Float(),
			High:  entry.Get(`2\. high`).Float(),
			Low:   entry.Get(`3\. low`).Float(),
			Close: entry.Get(`4\. close`).Float(),
		})
		return true
	})

	sort.Slice(points, func(i, j int) bool {
		ti, tj := seriesTime(points[i].Time), seriesTime(points[j].Time)
		if ti.Equal(tj) {
			return points[i].Time < points[j].Time
		}
		return ti.Before(tj)
	})
	return points
}

// WindowSeries keeps the trailing n points appropriate to the interval.
func WindowSeries(points []models.CandlePoint, interval string) []models.CandlePoint {
	n, ok := seriesWindow[interval]
	if !ok || len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

// Series keys contain spaces and parentheses, so they are matched by direct
// key comparison rather than a gjson path.
func findSeries(root gjson.Result, candidates []string) gjson.Result {
	var found gjson.Result
	for _, candidate := range candidates {
		root.ForEach(func(key, val gjson.Result) bool {
			if key.String() == candidate {
				found = val
				return false
			}
			return true
		})
		if found.Exists() {
			break
		}
	}
	return found
}

func seriesTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
