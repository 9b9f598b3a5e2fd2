package poller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Vivek1819/FinBoard/internal/dto"
	"github.com/Vivek1819/FinBoard/internal/errs"
	"github.com/Vivek1819/FinBoard/internal/marketdata"
	"github.com/Vivek1819/FinBoard/internal/models"
)

// Status is the widget polling state machine position.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
	StatusRateLimited Status = "rate_limited"
)

// Snapshot is a widget's published polling state. Updates are applied as a
// whole; a reader never observes a half-written cycle.
type Snapshot struct {
	Status        Status
	Rows          []models.Row
	Tickers       []models.TickerOption
	Points        []models.CandlePoint
	Error         string
	LastRefreshed time.Time
}

// Fetcher is the cache-backed fetch the poller drives. Satisfied by
// *marketdata.Cache.
type Fetcher interface {
	GetOrFetch(ctx context.Context, url string, ttl time.Duration) (json.RawMessage, error)
}

type widgetPoller struct {
	widget models.WidgetConfig
	fetch  Fetcher
	log    *slog.Logger
	clock  func() time.Time

	mu   sync.Mutex
	snap Snapshot

	cancel context.CancelFunc
	done   chan struct{}
}

func newWidgetPoller(w models.WidgetConfig, fetch Fetcher, log *slog.Logger, clock func() time.Time) *widgetPoller {
	return &widgetPoller{
		widget: w,
		fetch:  fetch,
		log:    log,
		clock:  clock,
		snap:   Snapshot{Status: StatusIdle},
		done:   make(chan struct{}),
	}
}

func (p *widgetPoller) interval() time.Duration {
	secs := dto.DefaultRefreshInterval
	if p.widget.API != nil && p.widget.API.RefreshInterval > 0 {
		secs = p.widget.API.RefreshInterval
	}
	return time.Duration(secs) * time.Second
}

func (p *widgetPoller) run(ctx context.Context) {
	defer close(p.done)

	p.cycle(ctx)

	ticker := time.NewTicker(p.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// cycle runs one fetch-normalize-publish pass. The cache TTL is the widget's
// own refresh cadence, so widgets sharing a URL at different intervals each
// get the freshness they asked for.
func (p *widgetPoller) cycle(ctx context.Context) {
	p.setLoading()

	ttl := p.interval()
	next := p.fetchCycle(ctx, ttl)

	// A cycle finishing after teardown or restart must not touch state that
	// belongs to a widget that is gone.
	if ctx.Err() != nil {
		return
	}
	next.LastRefreshed = p.clock()

	p.mu.Lock()
	p.snap = next
	p.mu.Unlock()
}

func (p *widgetPoller) fetchCycle(ctx context.Context, ttl time.Duration) Snapshot {
	if p.widget.Type == dto.WidgetTypeChart && p.widget.Chart != nil {
		return p.chartCycle(ctx, ttl)
	}
	if p.fansOut() {
		return p.watchlistCycle(ctx, ttl)
	}

	raw, err := p.fetch.GetOrFetch(ctx, p.widget.API.URL, ttl)
	if err != nil {
		return classify(err)
	}
	res := marketdata.Normalize(p.widget.Provider, raw)
	return Snapshot{Status: StatusSuccess, Rows: res.Rows, Tickers: res.Tickers}
}

func (p *widgetPoller) chartCycle(ctx context.Context, ttl time.Duration) Snapshot {
	raw, err := p.fetch.GetOrFetch(ctx, p.widget.API.URL, ttl)
	if err != nil {
		return classify(err)
	}
	interval := p.widget.Chart.Interval
	points := marketdata.WindowSeries(marketdata.NormalizeSeries(raw, interval), interval)
	return Snapshot{Status: StatusSuccess, Points: points}
}

// fansOut reports whether this widget polls a single-symbol quote endpoint on
// behalf of a watchlist, which requires one request per watched ticker.
func (p *widgetPoller) fansOut() bool {
	return p.widget.Type == dto.WidgetTypeCard &&
		p.widget.Card != nil &&
		p.widget.Card.Variant == dto.CardVariantWatchlist &&
		p.widget.Provider == models.ProviderFinnhubQuote
}

// watchlistCycle fans out one cache-backed request per watched ticker,
// concurrently, and waits for all to settle. Failed tickers are omitted from
// the row set rather than failing the batch; latency is bounded by the
// slowest single ticker.
func (p *widgetPoller) watchlistCycle(ctx context.Context, ttl time.Duration) Snapshot {
	tickers := p.widget.Card.WatchlistTickers
	rows := make([]*models.Row, len(tickers))
	failures := make([]error, len(tickers))

	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			raw, err := p.fetch.GetOrFetch(ctx, quoteURL(p.widget.API.URL, ticker), ttl)
			if err != nil {
				failures[i] = err
				p.log.Warn("watchlist ticker fetch failed", "widget_id", p.widget.ID, "ticker", ticker, "error", err)
				return
			}
			res := marketdata.Normalize(models.ProviderFinnhubQuote, raw)
			if len(res.Rows) == 0 {
				return
			}
			row := res.Rows[0]
			if row.Ticker == "" {
				row.Ticker = ticker
				row.Company = ticker
			}
			rows[i] = &row
		}(i, ticker)
	}
	wg.Wait()

	snap := Snapshot{Status: StatusSuccess, Rows: []models.Row{}, Tickers: []models.TickerOption{}}
	for _, row := range rows {
		if row == nil {
			continue
		}
		snap.Rows = append(snap.Rows, *row)
		snap.Tickers = append(snap.Tickers, models.TickerOption{Ticker: row.Ticker, Company: row.Company})
	}

	// Only when every ticker failed does the batch surface an error state;
	// the first failure decides the category.
	if len(snap.Rows) == 0 {
		for _, err := range failures {
			if err != nil {
				return classify(err)
			}
		}
	}
	return snap
}

func (p *widgetPoller) setLoading() {
	p.mu.Lock()
	p.snap.Status = StatusLoading
	p.snap.Error = ""
	p.mu.Unlock()
}

func (p *widgetPoller) snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

func classify(err error) Snapshot {
	if errs.IsRateLimit(err) {
		return Snapshot{Status: StatusRateLimited, Error: "Rate limit reached. Retrying shortly."}
	}
	return Snapshot{Status: StatusError, Error: "Failed to load data."}
}

// quoteURL substitutes a ticker into a single-symbol quote endpoint.
func quoteURL(base, ticker string) string {
	u, err := url.Parse(base)
	if err != nil {
		if strings.Contains(base, "?") {
			return base + "&symbol=" + url.QueryEscape(ticker)
		}
		return base + "?symbol=" + url.QueryEscape(ticker)
	}
	q := u.Query()
	q.Set("symbol", ticker)
	u.RawQuery = q.Encode()
	return u.String()
}
