package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Vivek1819/FinBoard/internal/models"
)

// Registry owns one poller per live widget. Starting a widget that already
// has a poller cancels the old one first, so config edits never leave an
// orphaned polling loop behind.
type Registry struct {
	fetch Fetcher
	log   *slog.Logger
	clock func() time.Time

	mu      sync.Mutex
	pollers map[string]*widgetPoller
}

func NewRegistry(fetch Fetcher, log *slog.Logger) *Registry {
	return &Registry{
		fetch:   fetch,
		log:     log,
		clock:   time.Now,
		pollers: make(map[string]*widgetPoller),
	}
}

// Start begins polling for a widget. Widgets without a live data source are
// ignored. An existing poller for the same widget ID is torn down before the
// replacement starts.
func (r *Registry) Start(w models.WidgetConfig) {
	if w.API == nil || w.API.URL == "" {
		r.Stop(w.ID)
		return
	}

	p := newWidgetPoller(w, r.fetch, r.log, r.clock)
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	r.mu.Lock()
	old := r.pollers[w.ID]
	r.pollers[w.ID] = p
	r.mu.Unlock()

	if old != nil {
		old.cancel()
		<-old.done
	}

	r.log.Debug("poller started", "widget_id", w.ID, "url", w.API.URL)
	go p.run(ctx)
}

// Stop tears down the poller for a widget, if any.
func (r *Registry) Stop(widgetID string) {
	r.mu.Lock()
	p := r.pollers[widgetID]
	delete(r.pollers, widgetID)
	r.mu.Unlock()

	if p != nil {
		p.cancel()
		<-p.done
		r.log.Debug("poller stopped", "widget_id", widgetID)
	}
}

// StopAll tears down every poller. Used on shutdown and dashboard import.
func (r *Registry) StopAll() {
	r.mu.Lock()
	pollers := r.pollers
	r.pollers = make(map[string]*widgetPoller)
	r.mu.Unlock()

	for _, p := range pollers {
		p.cancel()
		<-p.done
	}
}

// Snapshot returns the current published state for a widget. A widget with
// no running poller reports idle.
func (r *Registry) Snapshot(widgetID string) (Snapshot, bool) {
	r.mu.Lock()
	p := r.pollers[widgetID]
	r.mu.Unlock()

	if p == nil {
		return Snapshot{Status: StatusIdle}, false
	}
	return p.snapshot(), true
}
