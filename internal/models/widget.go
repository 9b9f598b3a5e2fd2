package models

// WidgetConfig is a user-authored specification of one dashboard tile,
// persisted locally as part of the dashboard blob.
type WidgetConfig struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"` // "card", "table" or "chart"

	// API is absent when the widget has no live data source.
	API *APIConfig `json:"api,omitempty"`

	// Provider is resolved from API.URL once, when the widget is created or
	// its URL edited. The normalizer dispatches on this tag rather than
	// re-inspecting the URL on every poll.
	Provider Provider `json:"provider,omitempty"`

	// Fields are the selected dot-delimited paths; AvailableFields is the
	// superset discovered at configuration time.
	Fields          []string `json:"fields,omitempty"`
	AvailableFields []string `json:"availableFields,omitempty"`

	// Card and Chart are meaningful only for the matching Type. A stale
	// branch left over from an earlier edit is ignored by the polling and
	// render paths.
	Card  *CardConfig  `json:"card,omitempty"`
	Chart *ChartConfig `json:"chart,omitempty"`

	// FieldFormats maps a field path to a value-formatter specifier.
	FieldFormats map[string]string `json:"fieldFormats,omitempty"`
}

// APIConfig is the endpoint a widget polls.
type APIConfig struct {
	URL             string `json:"url"`
	RefreshInterval int    `json:"refreshInterval"` // seconds
}

// CardConfig holds card-variant configuration.
type CardConfig struct {
	Variant string `json:"variant"` // "watchlist", "gainers", "performance" or "financial"

	// TickerField is the path used to identify a row's ticker.
	TickerField      string         `json:"tickerField,omitempty"`
	AvailableTickers []TickerOption `json:"availableTickers,omitempty"`
	WatchlistTickers []string       `json:"watchlistTickers,omitempty"`

	// PrimaryTicker selects the row shown by single-stock variants.
	PrimaryTicker string `json:"primaryTicker,omitempty"`
}

// ChartConfig holds chart-variant configuration.
type ChartConfig struct {
	Interval string `json:"interval"` // "daily", "weekly" or "monthly"
	Variant  string `json:"variant"`  // "line" or "candle"
}

// TickerOption is a selectable ticker with its display name.
type TickerOption struct {
	Ticker  string `json:"ticker"`
	Company string `json:"company"`
}
