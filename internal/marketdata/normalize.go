package marketdata

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Vivek1819/FinBoard/internal/models"
)

// NormalizeResult is the uniform output every renderer consumes.
type NormalizeResult struct {
	Rows    []models.Row          `json:"rows"`
	Tickers []models.TickerOption `json:"tickers"`
}

// DetectProvider resolves the upstream provider from a request URL. Called
// once when a widget's URL is configured; the resulting tag is stored on the
// config so normalization is a plain switch, not a per-poll string heuristic.
func DetectProvider(url string) models.Provider {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "coingecko.com"):
		return models.ProviderCoinGecko
	case strings.Contains(u, "finnhub") && strings.Contains(u, "quote"):
		return models.ProviderFinnhubQuote
	case strings.Contains(u, "finnhub") && strings.Contains(u, "symbol"):
		return models.ProviderFinnhubSymbols
	case strings.Contains(u, "alphavantage.co") || strings.Contains(u, "alpha-vantage"):
		return models.ProviderAlphaVantage
	case strings.Contains(u, "indianapi") || strings.Contains(u, "indian-stock"):
		return models.ProviderIndianAPI
	default:
		return models.ProviderUnknown
	}
}

// Normalize converts a raw provider payload into canonical rows and ticker
// options. It never fails: an unknown provider or a payload that doesn't
// match the provider's shape is "no data", not an error, so one odd response
// degrades a single widget to an empty state instead of erroring it.
func Normalize(provider models.Provider, raw json.RawMessage) NormalizeResult {
	empty := NormalizeResult{Rows: []models.Row{}, Tickers: []models.TickerOption{}}
	if !gjson.ValidBytes(raw) {
		return empty
	}
	root := gjson.ParseBytes(raw)

	switch provider {
	case models.ProviderCoinGecko:
		return normalizeCoinGecko(root, empty)
	case models.ProviderIndianAPI:
		return normalizeIndianAPI(root, empty)
	case models.ProviderFinnhubQuote:
		return normalizeFinnhubQuote(root, empty)
	case models.ProviderFinnhubSymbols:
		return normalizeFinnhubSymbols(root, empty)
	default:
		return empty
	}
}

// Market-cap listing: an array of coin objects.
func normalizeCoinGecko(root gjson.Result, empty NormalizeResult) NormalizeResult {
	if !root.IsArray() {
		return empty
	}
	out := empty
	for _, coin := range root.Array() {
		row := models.Row{
			Ticker:        strings.ToUpper(coin.Get("symbol").String()),
			Company:       coin.Get("name").String(),
			Price:         numField(coin, "current_price"),
			PercentChange: numField(coin, "price_change_percentage_24h"),
			Raw:           json.RawMessage(coin.Raw),
		}
		out.Rows = append(out.Rows, row)
		out.Tickers = append(out.Tickers, models.TickerOption{Ticker: row.Ticker, Company: row.Company})
	}
	return out
}

// Wrapped list under "data", already using the canonical field names.
func normalizeIndianAPI(root gjson.Result, empty NormalizeResult) NormalizeResult {
	data := root.Get("data")
	if !data.IsArray() {
		return empty
	}
	out := empty
	for _, rec := range data.Array() {
		row := models.Row{
			Ticker:        rec.Get("ticker").String(),
			Company:       rec.Get("company").String(),
			Price:         numField(rec, "price"),
			PercentChange: numField(rec, "percent_change"),
			Raw:           json.RawMessage(rec.Raw),
		}
		out.Rows = append(out.Rows, row)
		out.Tickers = append(out.Tickers, models.TickerOption{Ticker: row.Ticker, Company: row.Company})
	}
	return out
}

// Single-quote endpoint: a flat object with current price under "c" and
// percent-change under "dp". A missing or non-numeric price means no data.
func normalizeFinnhubQuote(root gjson.Result, empty NormalizeResult) NormalizeResult {
	price := root.Get("c")
	if price.Type != gjson.Number {
		return empty
	}
	symbol := root.Get("symbol").String()
	row := models.Row{
		Ticker:        symbol,
		Company:       symbol,
		Price:         floatPtr(price.Float()),
		PercentChange: numField(root, "dp"),
		Raw:           json.RawMessage(root.Raw),
	}
	out := empty
	out.Rows = append(out.Rows, row)
	if symbol != "" {
		out.Tickers = append(out.Tickers, models.TickerOption{Ticker: symbol, Company: symbol})
	}
	return out
}

// Symbol directory: {symbol, description} pairs, used to populate ticker
// selection, never live display.
func normalizeFinnhubSymbols(root gjson.Result, empty NormalizeResult) NormalizeResult {
	if !root.IsArray() {
		return empty
	}
	out := empty
	for _, rec := range root.Array() {
		row := models.Row{
			Ticker:  rec.Get("symbol").String(),
			Company: rec.Get("description").String(),
			Raw:     json.RawMessage(rec.Raw),
		}
		out.Rows = append(out.Rows, row)
		out.Tickers = append(out.Tickers, models.TickerOption{Ticker: row.Ticker, Company: row.Company})
	}
	return out
}

func numField(rec gjson.Result, key string) *float64 {
	v := rec.Get(key)
	if v.Type != gjson.Number {
		return nil
	}
	return floatPtr(v.Float())
}

func floatPtr(f float64) *float64 { return &f }
