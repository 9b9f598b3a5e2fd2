package dto

import (
	"time"

	"github.com/Vivek1819/FinBoard/internal/models"
)

// Widget type constants
const (
	WidgetTypeCard  = "card"
	WidgetTypeTable = "table"
	WidgetTypeChart = "chart"
)

// Card variants
const (
	CardVariantWatchlist   = "watchlist"
	CardVariantGainers     = "gainers"
	CardVariantPerformance = "performance"
	CardVariantFinancial   = "financial"
)

// Chart intervals
const (
	ChartIntervalDaily   = "daily"
	ChartIntervalWeekly  = "weekly"
	ChartIntervalMonthly = "monthly"
)

// Chart variants
const (
	ChartVariantLine   = "line"
	ChartVariantCandle = "candle"
)

// DefaultRefreshInterval is applied when a widget omits its poll period.
const DefaultRefreshInterval = 30

// --- Request types ---

type CreateWidgetRequest struct {
	Title           string              `json:"title"`
	Type            string              `json:"type"`
	API             *models.APIConfig   `json:"api,omitempty"`
	Fields          []string            `json:"fields,omitempty"`
	AvailableFields []string            `json:"availableFields,omitempty"`
	Card            *models.CardConfig  `json:"card,omitempty"`
	Chart           *models.ChartConfig `json:"chart,omitempty"`
	FieldFormats    map[string]string   `json:"fieldFormats,omitempty"`
}

type UpdateWidgetRequest struct {
	Title           string              `json:"title"`
	API             *models.APIConfig   `json:"api,omitempty"`
	Fields          []string            `json:"fields,omitempty"`
	AvailableFields []string            `json:"availableFields,omitempty"`
	Card            *models.CardConfig  `json:"card,omitempty"`
	Chart           *models.ChartConfig `json:"chart,omitempty"`
	FieldFormats    map[string]string   `json:"fieldFormats,omitempty"`
}

type ReorderWidgetItem struct {
	WidgetID string `json:"widgetId"`
	Position int    `json:"position"`
}

type ReorderWidgetsRequest struct {
	WidgetOrder []ReorderWidgetItem `json:"widgetOrder"`
}

type FieldPreviewRequest struct {
	URL string `json:"url"`
}

// --- Response types ---

type FieldPreviewResponse struct {
	Provider models.Provider `json:"provider"`
	Fields   []models.Field  `json:"fields"`
}

// WidgetDataResponse is the polling snapshot for one widget: its state
// machine position plus whatever rows or points the last cycle produced.
type WidgetDataResponse struct {
	WidgetID      string                `json:"widgetId"`
	Status        string                `json:"status"`
	Rows          []models.Row          `json:"rows,omitempty"`
	Tickers       []models.TickerOption `json:"tickers,omitempty"`
	Points        []models.CandlePoint  `json:"points,omitempty"`
	Values        map[string]string     `json:"values,omitempty"`
	Error         string                `json:"error,omitempty"`
	LastRefreshed *time.Time            `json:"lastRefreshed,omitempty"`
}
