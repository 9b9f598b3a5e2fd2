package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/Vivek1819/FinBoard/internal/dto"
	"github.com/Vivek1819/FinBoard/internal/errs"
	"github.com/Vivek1819/FinBoard/internal/marketdata"
	"github.com/Vivek1819/FinBoard/internal/models"
	"github.com/Vivek1819/FinBoard/internal/poller"
	"github.com/Vivek1819/FinBoard/pkg/logger"
)

// dashboardStore is the local persistence interface for widget configs.
type dashboardStore interface {
	List(ctx context.Context) ([]models.WidgetConfig, error)
	Get(ctx context.Context, widgetID string) (*models.WidgetConfig, error)
	Add(ctx context.Context, w models.WidgetConfig) error
	Update(ctx context.Context, w models.WidgetConfig) error
	Delete(ctx context.Context, widgetID string) error
	Replace(ctx context.Context, widgets []models.WidgetConfig) error
	Reorder(ctx context.Context, positions map[string]int) error
	Clear(ctx context.Context) error
}

// pollerRegistry drives per-widget polling lifecycles.
type pollerRegistry interface {
	Start(w models.WidgetConfig)
	Stop(widgetID string)
	StopAll()
	Snapshot(widgetID string) (poller.Snapshot, bool)
}

type dashboardService struct {
	store     dashboardStore
	pollers   pollerRegistry
	templates []dto.DashboardTemplate
	clock     func() time.Time
}

func NewDashboardService(store dashboardStore, pollers pollerRegistry, templates []dto.DashboardTemplate) *dashboardService {
	return &dashboardService{store: store, pollers: pollers, templates: templates, clock: time.Now}
}

// --- Public service methods ---

func (s *dashboardService) GetDashboard(ctx context.Context) ([]models.WidgetConfig, error) {
	return s.store.List(ctx)
}

// Resume starts pollers for every stored widget. Called once at process
// start so a restart picks up where the dashboard left off.
func (s *dashboardService) Resume(ctx context.Context) error {
	widgets, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	for _, w := range widgets {
		s.pollers.Start(w)
	}
	logger.FromContext(ctx).Info("dashboard resumed", "widgets", len(widgets))
	return nil
}

func (s *dashboardService) AddWidget(ctx context.Context, req dto.CreateWidgetRequest) (*models.WidgetConfig, error) {
	w := models.WidgetConfig{
		ID:              uuid.New().String(),
		Title:           req.Title,
		Type:            req.Type,
		API:             req.API,
		Fields:          req.Fields,
		AvailableFields: req.AvailableFields,
		Card:            req.Card,
		Chart:           req.Chart,
		FieldFormats:    req.FieldFormats,
	}
	prepare(&w)
	if err := validateWidget(w); err != nil {
		return nil, err
	}
	if err := s.store.Add(ctx, w); err != nil {
		return nil, err
	}
	s.pollers.Start(w)
	return &w, nil
}

func (s *dashboardService) UpdateWidget(ctx context.Context, widgetID string, req dto.UpdateWidgetRequest) (*models.WidgetConfig, error) {
	existing, err := s.store.Get(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	w := models.WidgetConfig{
		ID:              existing.ID,
		Title:           req.Title,
		Type:            existing.Type,
		API:             req.API,
		Fields:          req.Fields,
		AvailableFields: req.AvailableFields,
		Card:            req.Card,
		Chart:           req.Chart,
		FieldFormats:    req.FieldFormats,
	}
	prepare(&w)
	if err := validateWidget(w); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, w); err != nil {
		return nil, err
	}
	// Restarting replaces the old timer before the new one begins.
	s.pollers.Start(w)
	return &w, nil
}

func (s *dashboardService) DeleteWidget(ctx context.Context, widgetID string) error {
	if err := s.store.Delete(ctx, widgetID); err != nil {
		return err
	}
	s.pollers.Stop(widgetID)
	return nil
}

func (s *dashboardService) ReorderWidgets(ctx context.Context, req dto.ReorderWidgetsRequest) error {
	positions := make(map[string]int, len(req.WidgetOrder))
	for _, item := range req.WidgetOrder {
		positions[item.WidgetID] = item.Position
	}
	return s.store.Reorder(ctx, positions)
}

func (s *dashboardService) ClearDashboard(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.pollers.StopAll()
	return nil
}

// --- Export / import ---

func (s *dashboardService) ExportDashboard(ctx context.Context) (dto.DashboardExport, error) {
	widgets, err := s.store.List(ctx)
	if err != nil {
		return dto.DashboardExport{}, err
	}
	return dto.DashboardExport{
		Version:    dto.ExportVersion,
		Widgets:    widgets,
		ExportedAt: s.clock().UTC(),
	}, nil
}

// ImportDashboard replaces the dashboard from an export document. The
// document must be a JSON object whose "widgets" member is an array.
func (s *dashboardService) ImportDashboard(ctx context.Context, data []byte) ([]models.WidgetConfig, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, errs.NewFormatError("invalid file format")
	}
	if !gjson.GetBytes(data, "widgets").IsArray() {
		return nil, errs.NewFormatError("invalid dashboard structure")
	}
	var doc dto.DashboardExport
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.NewFormatError("invalid dashboard structure")
	}

	widgets := doc.Widgets
	for i := range widgets {
		if widgets[i].ID == "" {
			widgets[i].ID = uuid.New().String()
		}
		prepare(&widgets[i])
		if err := validateWidget(widgets[i]); err != nil {
			return nil, err
		}
	}
	if err := s.store.Replace(ctx, widgets); err != nil {
		return nil, err
	}

	s.pollers.StopAll()
	for _, w := range widgets {
		s.pollers.Start(w)
	}
	logger.FromContext(ctx).Info("dashboard imported", "widgets", len(widgets))
	return widgets, nil
}

// --- Preparation & validation ---

// prepare applies defaults and resolves the provider tag from the URL once,
// so polling never re-infers it.
func prepare(w *models.WidgetConfig) {
	if w.API == nil {
		w.Provider = models.ProviderUnknown
		return
	}
	if w.API.RefreshInterval <= 0 {
		w.API.RefreshInterval = dto.DefaultRefreshInterval
	}
	w.Provider = marketdata.DetectProvider(w.API.URL)
}

func validateWidget(w models.WidgetConfig) error {
	switch w.Type {
	case dto.WidgetTypeCard, dto.WidgetTypeTable, dto.WidgetTypeChart:
	default:
		return errs.NewValidationError("unknown widget type: " + w.Type)
	}
	if w.Title == "" {
		return errs.NewValidationError("title is required")
	}
	if w.API != nil && w.API.URL == "" {
		return errs.NewValidationError("api.url is required when api is present")
	}

	switch w.Type {
	case dto.WidgetTypeCard:
		if w.Card == nil {
			return errs.NewValidationError("config.card is required for card widgets")
		}
		switch w.Card.Variant {
		case dto.CardVariantWatchlist, dto.CardVariantGainers,
			dto.CardVariantPerformance, dto.CardVariantFinancial:
		default:
			return errs.NewValidationError(fmt.Sprintf("card.variant %q is not valid", w.Card.Variant))
		}

	case dto.WidgetTypeChart:
		if w.Chart == nil {
			return errs.NewValidationError("config.chart is required for chart widgets")
		}
		switch w.Chart.Interval {
		case dto.ChartIntervalDaily, dto.ChartIntervalWeekly, dto.ChartIntervalMonthly:
		default:
			return errs.NewValidationError("chart.interval must be one of: daily, weekly, monthly")
		}
		switch w.Chart.Variant {
		case dto.ChartVariantLine, dto.ChartVariantCandle:
		default:
			return errs.NewValidationError(`chart.variant must be "line" or "candle"`)
		}

	case dto.WidgetTypeTable:
		// Fields may be empty; the renderer simply shows no columns.
	}
	return nil
}
