package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Vivek1819/FinBoard/internal/dto"
	"github.com/Vivek1819/FinBoard/internal/errs"
	"github.com/Vivek1819/FinBoard/internal/models"
	"github.com/Vivek1819/FinBoard/pkg/logger"
)

// PopularTickers seeds watchlist pickers when the symbol directory is
// unavailable.
var PopularTickers = []models.TickerOption{
	{Ticker: "AAPL", Company: "Apple"},
	{Ticker: "MSFT", Company: "Microsoft"},
	{Ticker: "GOOGL", Company: "Google"},
	{Ticker: "AMZN", Company: "Amazon"},
	{Ticker: "TSLA", Company: "Tesla"},
	{Ticker: "NVDA", Company: "NVIDIA"},
	{Ticker: "META", Company: "Meta"},
}

const coinGeckoMarketsURL = "https://api.coingecko.com/api/v3/coins/markets?vs_currency=inr&order=market_cap_desc&per_page=100&page=1&sparkline=false"

// Demo symbol for the chart template.
const alphaVantageDemoURL = "https://www.alphavantage.co/query?function=TIME_SERIES_DAILY&symbol=IBM&apikey=demo"

// BuiltinTemplates is the predefined dashboard catalog. proxyBase is the
// server's own address, since templates point card widgets at the local
// proxy routes that attach API keys.
func BuiltinTemplates(proxyBase string) []dto.DashboardTemplate {
	base := strings.TrimSuffix(proxyBase, "/")
	usTech := []models.TickerOption{
		{Ticker: "AAPL", Company: "Apple Inc"},
		{Ticker: "MSFT", Company: "Microsoft Corp"},
		{Ticker: "GOOGL", Company: "Alphabet Inc"},
		{Ticker: "NVDA", Company: "Nvidia Corp"},
		{Ticker: "TSLA", Company: "Tesla Inc"},
	}

	return []dto.DashboardTemplate{
		{
			ID:          "stock-trader",
			Name:        "Stock Trader",
			Description: "Real-time Indian market data and US Tech watchlist",
			Widgets: []models.WidgetConfig{
				{
					Title:  "NSE Most Active",
					Type:   dto.WidgetTypeTable,
					API:    &models.APIConfig{URL: base + "/api/indian-stock/NSE_most_active", RefreshInterval: 60},
					Fields: []string{"price", "percent_change", "volume"},
					FieldFormats: map[string]string{
						"price":          "currency-inr",
						"percent_change": "percent",
					},
				},
				{
					Title: "US Tech Watchlist",
					Type:  dto.WidgetTypeCard,
					API:   &models.APIConfig{URL: base + "/api/finnhub/quote", RefreshInterval: 60},
					Card: &models.CardConfig{
						Variant:          dto.CardVariantWatchlist,
						AvailableTickers: usTech,
						WatchlistTickers: []string{"AAPL", "MSFT", "GOOGL", "NVDA", "TSLA"},
					},
				},
				{
					Title: "IBM Daily Chart (Demo)",
					Type:  dto.WidgetTypeChart,
					API:   &models.APIConfig{URL: alphaVantageDemoURL, RefreshInterval: 300},
					Chart: &models.ChartConfig{Interval: dto.ChartIntervalDaily, Variant: dto.ChartVariantCandle},
				},
			},
		},
		{
			ID:          "crypto-tracker",
			Name:        "Crypto Tracker",
			Description: "Monitor major cryptocurrencies and trends",
			Widgets: []models.WidgetConfig{
				{
					Title: "Crypto Watchlist",
					Type:  dto.WidgetTypeCard,
					API:   &models.APIConfig{URL: coinGeckoMarketsURL, RefreshInterval: 60},
					Card: &models.CardConfig{
						Variant:          dto.CardVariantWatchlist,
						TickerField:      "symbol",
						WatchlistTickers: []string{"BTC", "ETH", "SOL", "DOGE"},
						AvailableTickers: []models.TickerOption{
							{Ticker: "BTC", Company: "Bitcoin"},
							{Ticker: "ETH", Company: "Ethereum"},
							{Ticker: "SOL", Company: "Solana"},
							{Ticker: "DOGE", Company: "Dogecoin"},
						},
					},
				},
				{
					Title: "Top Gainers (24h)",
					Type:  dto.WidgetTypeCard,
					API:   &models.APIConfig{URL: coinGeckoMarketsURL, RefreshInterval: 60},
					Card:  &models.CardConfig{Variant: dto.CardVariantGainers},
				},
				{
					Title:  "Market Overview",
					Type:   dto.WidgetTypeTable,
					API:    &models.APIConfig{URL: coinGeckoMarketsURL, RefreshInterval: 120},
					Fields: []string{"name", "current_price", "price_change_percentage_24h", "market_cap"},
					FieldFormats: map[string]string{
						"current_price":               "currency-inr",
						"price_change_percentage_24h": "percent",
						"market_cap":                  "compact",
					},
				},
			},
		},
	}
}

func (s *dashboardService) ListTemplates(ctx context.Context) []dto.DashboardTemplate {
	return s.templates
}

func (s *dashboardService) PopularTickers(ctx context.Context) []models.TickerOption {
	return PopularTickers
}

// ApplyTemplate replaces the dashboard with a template's widgets, minted
// fresh IDs included, and restarts polling for the new set.
func (s *dashboardService) ApplyTemplate(ctx context.Context, templateID string) ([]models.WidgetConfig, error) {
	var tmpl *dto.DashboardTemplate
	for i := range s.templates {
		if s.templates[i].ID == templateID {
			tmpl = &s.templates[i]
			break
		}
	}
	if tmpl == nil {
		return nil, errs.NewNotFoundError("unknown template: " + templateID)
	}

	widgets := make([]models.WidgetConfig, len(tmpl.Widgets))
	copy(widgets, tmpl.Widgets)
	for i := range widgets {
		widgets[i].ID = uuid.New().String()
		prepare(&widgets[i])
	}
	if err := s.store.Replace(ctx, widgets); err != nil {
		return nil, err
	}

	s.pollers.StopAll()
	for _, w := range widgets {
		s.pollers.Start(w)
	}
	logger.FromContext(ctx).Info("template applied", "template", templateID, "widgets", len(widgets))
	return widgets, nil
}
