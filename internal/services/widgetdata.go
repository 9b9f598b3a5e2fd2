package services

import (
	"context"
	"sort"

	"github.com/Vivek1819/FinBoard/internal/dto"
	"github.com/Vivek1819/FinBoard/internal/marketdata"
	"github.com/Vivek1819/FinBoard/internal/models"
	"github.com/Vivek1819/FinBoard/pkg/helpers"
)

const topGainerCount = 5

// GetWidgetData returns the widget's current polling snapshot, with rows
// shaped for the card variant and selected fields formatted for display.
func (s *dashboardService) GetWidgetData(ctx context.Context, widgetID string) (dto.WidgetDataResponse, error) {
	w, err := s.store.Get(ctx, widgetID)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}

	snap, _ := s.pollers.Snapshot(widgetID)
	resp := dto.WidgetDataResponse{
		WidgetID: widgetID,
		Status:   string(snap.Status),
		Tickers:  snap.Tickers,
		Points:   snap.Points,
		Error:    snap.Error,
	}
	if !snap.LastRefreshed.IsZero() {
		resp.LastRefreshed = helpers.Ptr(snap.LastRefreshed)
	}

	rows := snap.Rows
	if w.Type == dto.WidgetTypeCard && w.Card != nil {
		rows = shapeCardRows(w, rows)
	}
	resp.Rows = rows
	resp.Values = formatFields(w, rows)
	return resp, nil
}

func shapeCardRows(w *models.WidgetConfig, rows []models.Row) []models.Row {
	switch w.Card.Variant {
	case dto.CardVariantGainers:
		return topGainers(rows)
	case dto.CardVariantWatchlist:
		return watchlistRows(w.Card, rows)
	case dto.CardVariantPerformance, dto.CardVariantFinancial:
		return primaryRow(w.Card, rows)
	default:
		return rows
	}
}

func topGainers(rows []models.Row) []models.Row {
	sorted := make([]models.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return helpers.Value(sorted[i].PercentChange) > helpers.Value(sorted[j].PercentChange)
	})
	if len(sorted) > topGainerCount {
		sorted = sorted[:topGainerCount]
	}
	return sorted
}

func watchlistRows(card *models.CardConfig, rows []models.Row) []models.Row {
	watched := make(map[string]bool, len(card.WatchlistTickers))
	for _, t := range card.WatchlistTickers {
		watched[t] = true
	}
	filtered := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		if watched[rowTicker(card, row)] {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// primaryRow narrows the set to the configured primary ticker's row, or the
// first row when no primary is configured or no row matches it.
func primaryRow(card *models.CardConfig, rows []models.Row) []models.Row {
	if len(rows) == 0 {
		return rows
	}
	if card.PrimaryTicker != "" {
		for _, row := range rows {
			if rowTicker(card, row) == card.PrimaryTicker {
				return []models.Row{row}
			}
		}
	}
	return rows[:1]
}

func rowTicker(card *models.CardConfig, row models.Row) string {
	if card.TickerField == "" {
		return row.Ticker
	}
	v, ok := marketdata.Lookup(row.Raw, card.TickerField)
	if !ok {
		return row.Ticker
	}
	return v.String()
}

// formatFields resolves each selected field path against the first row's raw
// record and renders it under the widget's per-field format specifier.
func formatFields(w *models.WidgetConfig, rows []models.Row) map[string]string {
	if len(w.Fields) == 0 || len(rows) == 0 {
		return nil
	}
	raw := rows[0].Raw
	values := make(map[string]string, len(w.Fields))
	for _, path := range w.Fields {
		var value any
		if v, ok := marketdata.Lookup(raw, path); ok {
			value = v.Value()
		}
		values[path] = marketdata.FormatValue(value, w.FieldFormats[path])
	}
	return values
}
