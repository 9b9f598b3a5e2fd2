package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/Vivek1819/FinBoard/internal/errs"
	"github.com/Vivek1819/FinBoard/internal/models"
)

// The dashboard persists as one versioned blob under a fixed storage key,
// the same shape the browser build kept in local storage.
const (
	storageKey    = "finboard-dashboard"
	schemaVersion = 1
)

const schema = `
CREATE TABLE IF NOT EXISTS dashboard_state (
	key TEXT PRIMARY KEY,
	version INTEGER NOT NULL,
	payload BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

type dashboardStore struct {
	db *sql.DB
	// read-modify-write of the blob must not interleave across handlers
	mu sync.Mutex
}

// NewDashboardStore opens (creating if needed) the local sqlite file backing
// the dashboard and ensures the schema exists.
func NewDashboardStore(path string) (*dashboardStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.NewStorageError("open", "failed to open dashboard database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errs.NewStorageError("migrate", "failed to create dashboard schema", err)
	}
	return &dashboardStore{db: db}, nil
}

func (s *dashboardStore) Close() error {
	return s.db.Close()
}

func (s *dashboardStore) List(ctx context.Context) ([]models.WidgetConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *dashboardStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	widgets, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(widgets), nil
}

func (s *dashboardStore) Add(ctx context.Context, w models.WidgetConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	widgets, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, append(widgets, w))
}

func (s *dashboardStore) Get(ctx context.Context, widgetID string) (*models.WidgetConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	widgets, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range widgets {
		if widgets[i].ID == widgetID {
			return &widgets[i], nil
		}
	}
	return nil, errs.NewNotFoundError("widget not found")
}

func (s *dashboardStore) Update(ctx context.Context, w models.WidgetConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	widgets, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range widgets {
		if widgets[i].ID == w.ID {
			widgets[i] = w
			return s.save(ctx, widgets)
		}
	}
	return errs.NewNotFoundError("widget not found")
}

func (s *dashboardStore) Delete(ctx context.Context, widgetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	widgets, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := widgets[:0]
	found := false
	for _, w := range widgets {
		if w.ID == widgetID {
			found = true
			continue
		}
		kept = append(kept, w)
	}
	if !found {
		return errs.NewNotFoundError("widget not found")
	}
	return s.save(ctx, kept)
}

// Replace swaps the entire widget list, used by import and templates.
func (s *dashboardStore) Replace(ctx context.Context, widgets []models.WidgetConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, widgets)
}

// Reorder sorts widgets by the given positions; widgets absent from the map
// keep their relative order after the repositioned ones.
func (s *dashboardStore) Reorder(ctx context.Context, positions map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	widgets, err := s.load(ctx)
	if err != nil {
		return err
	}
	sort.SliceStable(widgets, func(i, j int) bool {
		return orderOf(widgets[i].ID, positions) < orderOf(widgets[j].ID, positions)
	})
	return s.save(ctx, widgets)
}

func (s *dashboardStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, []models.WidgetConfig{})
}

func orderOf(id string, positions map[string]int) int {
	if pos, ok := positions[id]; ok {
		return pos
	}
	return math.MaxInt
}

func (s *dashboardStore) load(ctx context.Context) ([]models.WidgetConfig, error) {
	var version int
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT version, payload FROM dashboard_state WHERE key = ?`, storageKey).
		Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.WidgetConfig{}, nil
	}
	if err != nil {
		return nil, errs.NewStorageError("read", "failed to load dashboard", err)
	}
	if version != schemaVersion {
		// No migrations exist yet; an unknown version starts fresh.
		return []models.WidgetConfig{}, nil
	}
	var widgets []models.WidgetConfig
	if err := json.Unmarshal(payload, &widgets); err != nil {
		return nil, errs.NewStorageError("read", "failed to decode dashboard payload", err)
	}
	return widgets, nil
}

func (s *dashboardStore) save(ctx context.Context, widgets []models.WidgetConfig) error {
	payload, err := json.Marshal(widgets)
	if err != nil {
		return errs.NewStorageError("write", "failed to encode dashboard payload", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dashboard_state (key, version, payload, updated_at)
		VALUES (?, ?, ?, unixepoch())
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		storageKey, schemaVersion, payload)
	if err != nil {
		return errs.NewStorageError("write", "failed to save dashboard", err)
	}
	return nil
}
