package poller

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Vivek1819/FinBoard/internal/dto"
	"github.com/Vivek1819/FinBoard/internal/errs"
	"github.com/Vivek1819/FinBoard/internal/models"
	"github.com/Vivek1819/FinBoard/pkg/logger"
)

// --- Fake fetcher ---

type fakeFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	respond func(url string) (json.RawMessage, error)
}

func newFakeFetcher(respond func(url string) (json.RawMessage, error)) *fakeFetcher {
	return &fakeFetcher{calls: make(map[string]int), respond: respond}
}

func (f *fakeFetcher) GetOrFetch(_ context.Context, url string, _ time.Duration) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls[url]++
	f.mu.Unlock()
	return f.respond(url)
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func testLog() *slog.Logger {
	return slog.New(logger.NewTestHandler(slog.LevelInfo))
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func tableWidget(id, url string) models.WidgetConfig {
	return models.WidgetConfig{
		ID:       id,
		Title:    "Markets",
		Type:     dto.WidgetTypeTable,
		Provider: models.ProviderCoinGecko,
		API:      &models.APIConfig{URL: url, RefreshInterval: 30},
	}
}

const coinGeckoPayload = `[{"symbol":"btc","name":"Bitcoin","current_price":65000.12,"price_change_percentage_24h":1.9}]`

// --- Tests ---

func TestPollerPublishesSuccess(t *testing.T) {
	fetch := newFakeFetcher(func(string) (json.RawMessage, error) {
		return json.RawMessage(coinGeckoPayload), nil
	})
	r := NewRegistry(fetch, testLog())
	defer r.StopAll()

	r.Start(tableWidget("w1", "https://api.coingecko.com/markets"))

	waitFor(t, func() bool {
		snap, ok := r.Snapshot("w1")
		return ok && snap.Status == StatusSuccess
	})

	snap, _ := r.Snapshot("w1")
	if len(snap.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(snap.Rows))
	}
	if snap.Rows[0].Ticker != "BTC" {
		t.Errorf("expected ticker BTC, got %q", snap.Rows[0].Ticker)
	}
	if snap.LastRefreshed.IsZero() {
		t.Error("expected LastRefreshed to be set")
	}
	if snap.Error != "" {
		t.Errorf("unexpected error message %q", snap.Error)
	}
}

func TestPollerPublishesErrorState(t *testing.T) {
	fetch := newFakeFetcher(func(string) (json.RawMessage, error) {
		return nil, errs.NewHTTPError(500)
	})
	r := NewRegistry(fetch, testLog())
	defer r.StopAll()

	r.Start(tableWidget("w1", "https://api.coingecko.com/markets"))

	waitFor(t, func() bool {
		snap, ok := r.Snapshot("w1")
		return ok && snap.Status == StatusError
	})

	snap, _ := r.Snapshot("w1")
	if snap.Error != "Failed to load data." {
		t.Errorf("unexpected error message %q", snap.Error)
	}
}

func TestPollerPublishesRateLimited(t *testing.T) {
	fetch := newFakeFetcher(func(string) (json.RawMessage, error) {
		return nil, errs.NewHTTPError(429)
	})
	r := NewRegistry(fetch, testLog())
	defer r.StopAll()

	r.Start(tableWidget("w1", "https://api.coingecko.com/markets"))

	waitFor(t, func() bool {
		snap, ok := r.Snapshot("w1")
		return ok && snap.Status == StatusRateLimited
	})

	snap, _ := r.Snapshot("w1")
	if snap.Error != "Rate limit reached. Retrying shortly." {
		t.Errorf("unexpected error message %q", snap.Error)
	}
}

func TestPollerChartWidget(t *testing.T) {
	payload := `{"Time Series (Daily)":{
		"2025-06-02":{"1. open":"2","2. high":"3","3. low":"1","4. close":"2.5"},
		"2025-06-01":{"1. open":"1","2. high":"2","3. low":"0.5","4. close":"1.5"}
	}}`
	fetch := newFakeFetcher(func(string) (json.RawMessage, error) {
		return json.RawMessage(payload), nil
	})
	r := NewRegistry(fetch, testLog())
	defer r.StopAll()

	r.Start(models.WidgetConfig{
		ID:       "c1",
		Title:    "IBM Daily",
		Type:     dto.WidgetTypeChart,
		Provider: models.ProviderAlphaVantage,
		API:      &models.APIConfig{URL: "https://www.alphavantage.co/query", RefreshInterval: 60},
		Chart:    &models.ChartConfig{Interval: dto.ChartIntervalDaily, Variant: dto.ChartVariantCandle},
	})

	waitFor(t, func() bool {
		snap, ok := r.Snapshot("c1")
		return ok && snap.Status == StatusSuccess
	})

	snap, _ := r.Snapshot("c1")
	if len(snap.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(snap.Points))
	}
	if snap.Points[0].Time != "2025-06-01" {
		t.Errorf("points not sorted ascending: first is %q", snap.Points[0].Time)
	}
}

func watchlistWidget(id string, tickers ...string) models.WidgetConfig {
	return models.WidgetConfig{
		ID:       id,
		Title:    "Watchlist",
		Type:     dto.WidgetTypeCard,
		Provider: models.ProviderFinnhubQuote,
		API:      &models.APIConfig{URL: "http://localhost:8080/api/finnhub/quote", RefreshInterval: 30},
		Card: &models.CardConfig{
			Variant:          dto.CardVariantWatchlist,
			WatchlistTickers: tickers,
		},
	}
}

func TestWatchlistPartialFailureOmitsRows(t *testing.T) {
	fetch := newFakeFetcher(func(url string) (json.RawMessage, error) {
		if strings.Contains(url, "symbol=MSFT") {
			return nil, errs.NewHTTPError(502)
		}
		return json.RawMessage(`{"c":100.5,"dp":0.3}`), nil
	})
	r := NewRegistry(fetch, testLog())
	defer r.StopAll()

	r.Start(watchlistWidget("wl", "AAPL", "MSFT", "GOOGL"))

	waitFor(t, func() bool {
		snap, ok := r.Snapshot("wl")
		return ok && snap.Status == StatusSuccess
	})

	snap, _ := r.Snapshot("wl")
	if len(snap.Rows) != 2 {
		t.Fatalf("expected exactly 2 rows, got %d", len(snap.Rows))
	}
	// config order is preserved for the survivors
	if snap.Rows[0].Ticker != "AAPL" || snap.Rows[1].Ticker != "GOOGL" {
		t.Errorf("unexpected row order: %q, %q", snap.Rows[0].Ticker, snap.Rows[1].Ticker)
	}
}

func TestWatchlistAllFailedClassifies(t *testing.T) {
	fetch := newFakeFetcher(func(string) (json.RawMessage, error) {
		return nil, errs.NewHTTPError(429)
	})
	r := NewRegistry(fetch, testLog())
	defer r.StopAll()

	r.Start(watchlistWidget("wl", "AAPL", "MSFT"))

	waitFor(t, func() bool {
		snap, ok := r.Snapshot("wl")
		return ok && snap.Status == StatusRateLimited
	})
}

func TestWatchlistFansOutPerTicker(t *testing.T) {
	fetch := newFakeFetcher(func(string) (json.RawMessage, error) {
		return json.RawMessage(`{"c":100.5}`), nil
	})
	r := NewRegistry(fetch, testLog())
	defer r.StopAll()

	r.Start(watchlistWidget("wl", "AAPL", "MSFT"))

	waitFor(t, func() bool {
		snap, ok := r.Snapshot("wl")
		return ok && snap.Status == StatusSuccess
	})

	if n := fetch.callCount("http://localhost:8080/api/finnhub/quote?symbol=AAPL"); n == 0 {
		t.Error("expected a per-ticker request for AAPL")
	}
	if n := fetch.callCount("http://localhost:8080/api/finnhub/quote?symbol=MSFT"); n == 0 {
		t.Error("expected a per-ticker request for MSFT")
	}

	// rows fall back to the configured ticker when the payload omits it
	snap, _ := r.Snapshot("wl")
	if len(snap.Rows) != 2 || snap.Rows[0].Ticker != "AAPL" {
		t.Errorf("unexpected rows: %+v", snap.Rows)
	}
}

func TestRegistryStop(t *testing.T) {
	fetch := newFakeFetcher(func(string) (json.RawMessage, error) {
		return json.RawMessage(coinGeckoPayload), nil
	})
	r := NewRegistry(fetch, testLog())

	r.Start(tableWidget("w1", "https://api.coingecko.com/markets"))
	waitFor(t, func() bool {
		snap, ok := r.Snapshot("w1")
		return ok && snap.Status == StatusSuccess
	})

	r.Stop("w1")

	snap, ok := r.Snapshot("w1")
	if ok {
		t.Error("expected no poller after Stop")
	}
	if snap.Status != StatusIdle {
		t.Errorf("expected idle snapshot after Stop, got %s", snap.Status)
	}
}

func TestRegistryStartWithoutURLIsIgnored(t *testing.T) {
	fetch := newFakeFetcher(func(string) (json.RawMessage, error) {
		return json.RawMessage(`{}`), nil
	})
	r := NewRegistry(fetch, testLog())
	defer r.StopAll()

	r.Start(models.WidgetConfig{ID: "w1", Type: dto.WidgetTypeTable})

	if _, ok := r.Snapshot("w1"); ok {
		t.Error("widget without a data source must not get a poller")
	}
}

func TestRegistryRestartReplacesPoller(t *testing.T) {
	fetch := newFakeFetcher(func(url string) (json.RawMessage, error) {
		if strings.Contains(url, "second") {
			return json.RawMessage(`[{"symbol":"eth","name":"Ethereum","current_price":3100.5}]`), nil
		}
		return json.RawMessage(coinGeckoPayload), nil
	})
	r := NewRegistry(fetch, testLog())
	defer r.StopAll()

	r.Start(tableWidget("w1", "https://api.coingecko.com/first"))
	waitFor(t, func() bool {
		snap, ok := r.Snapshot("w1")
		return ok && snap.Status == StatusSuccess
	})

	r.Start(tableWidget("w1", "https://api.coingecko.com/second"))
	waitFor(t, func() bool {
		snap, ok := r.Snapshot("w1")
		return ok && len(snap.Rows) == 1 && snap.Rows[0].Ticker == "ETH"
	})
}

// A cycle that finishes after its context is canceled must not overwrite the
// published snapshot.
func TestCycleDiscardsStaleResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := newFakeFetcher(func(string) (json.RawMessage, error) {
		cancel() // teardown races the in-flight fetch and wins
		return json.RawMessage(coinGeckoPayload), nil
	})

	p := newWidgetPoller(tableWidget("w1", "https://api.coingecko.com/markets"), fetch, testLog(), time.Now)
	p.cycle(ctx)

	snap := p.snapshot()
	if snap.Status != StatusLoading {
		t.Errorf("stale cycle must not publish, got status %s", snap.Status)
	}
	if len(snap.Rows) != 0 {
		t.Errorf("stale cycle must not publish rows, got %d", len(snap.Rows))
	}
	if !snap.LastRefreshed.IsZero() {
		t.Error("stale cycle must not stamp LastRefreshed")
	}
}
