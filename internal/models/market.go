package models

import "encoding/json"

// Provider tags which upstream API issued a payload. It is resolved from the
// widget's URL at configuration time and stored on the config.
type Provider string

const (
	ProviderUnknown        Provider = ""
	ProviderCoinGecko      Provider = "coingecko"
	ProviderIndianAPI      Provider = "indian-api"
	ProviderFinnhubQuote   Provider = "finnhub-quote"
	ProviderFinnhubSymbols Provider = "finnhub-symbols"
	ProviderAlphaVantage   Provider = "alpha-vantage"
)

// Row is the canonical tabular record every provider payload is normalized
// into. Raw always carries the original record so renderers can resolve
// arbitrary field paths the normalizer didn't promote.
type Row struct {
	Ticker        string          `json:"ticker"`
	Company       string          `json:"company"`
	Price         *float64        `json:"price,omitempty"`
	PercentChange *float64        `json:"percent_change,omitempty"`
	Raw           json.RawMessage `json:"raw"`
}

// CandlePoint is one OHLC sample, keyed by its source timestamp string.
type CandlePoint struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Field is a flattened, addressable path into a sample payload with its
// inferred primitive type.
type Field struct {
	Path string `json:"path"`
	Type string `json:"type"` // "string", "number" or "boolean"
}
