package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vivek1819/FinBoard/internal/dto"
	"github.com/Vivek1819/FinBoard/internal/errs"
	"github.com/Vivek1819/FinBoard/internal/models"
	"github.com/Vivek1819/FinBoard/internal/response"
)

type DashboardService interface {
	GetDashboard(ctx context.Context) ([]models.WidgetConfig, error)
	AddWidget(ctx context.Context, req dto.CreateWidgetRequest) (*models.WidgetConfig, error)
	UpdateWidget(ctx context.Context, widgetID string, req dto.UpdateWidgetRequest) (*models.WidgetConfig, error)
	DeleteWidget(ctx context.Context, widgetID string) error
	ReorderWidgets(ctx context.Context, req dto.ReorderWidgetsRequest) error
	ClearDashboard(ctx context.Context) error
	GetWidgetData(ctx context.Context, widgetID string) (dto.WidgetDataResponse, error)
	ExportDashboard(ctx context.Context) (dto.DashboardExport, error)
	ImportDashboard(ctx context.Context, data []byte) ([]models.WidgetConfig, error)
	ListTemplates(ctx context.Context) []dto.DashboardTemplate
	ApplyTemplate(ctx context.Context, templateID string) ([]models.WidgetConfig, error)
	PopularTickers(ctx context.Context) []models.TickerOption
}

type dashboardHandlers struct {
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
}

func NewDashboardHandlers(deps *Deps) *dashboardHandlers {
	return &dashboardHandlers{
		ResponseHandler: deps.ResponseHandler,
		DashboardSvc:    deps.DashboardSvc,
	}
}

func (h *dashboardHandlers) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetDashboard)
	r.Delete("/", h.ClearDashboard)
	r.Post("/widgets", h.AddWidget)
	r.Put("/widgets/reorder", h.ReorderWidgets) // must be before /{widgetId}
	r.Put("/widgets/{widgetId}", h.UpdateWidget)
	r.Delete("/widgets/{widgetId}", h.DeleteWidget)
	r.Get("/widgets/{widgetId}/data", h.GetWidgetData)
	r.Get("/export", h.ExportDashboard)
	r.Post("/import", h.ImportDashboard)
	r.Mount("/templates", h.TemplateRoutes())
	return r
}

func (h *dashboardHandlers) TemplateRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListTemplates)
	r.Post("/{templateId}", h.ApplyTemplate)
	return r
}

func (h *dashboardHandlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	widgets, err := h.DashboardSvc.GetDashboard(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widgets)
}

func (h *dashboardHandlers) AddWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewFormatError("invalid request body"))
		return
	}
	widget, err := h.DashboardSvc.AddWidget(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, widget)
}

func (h *dashboardHandlers) UpdateWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.UpdateWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewFormatError("invalid request body"))
		return
	}
	widget, err := h.DashboardSvc.UpdateWidget(r.Context(), widgetID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *dashboardHandlers) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	if err := h.DashboardSvc.DeleteWidget(r.Context(), widgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"deleted": widgetID})
}

func (h *dashboardHandlers) ReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderWidgetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewFormatError("invalid request body"))
		return
	}
	if err := h.DashboardSvc.ReorderWidgets(r.Context(), req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"status": "reordered"})
}

func (h *dashboardHandlers) ClearDashboard(w http.ResponseWriter, r *http.Request) {
	if err := h.DashboardSvc.ClearDashboard(r.Context()); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *dashboardHandlers) GetWidgetData(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	data, err := h.DashboardSvc.GetWidgetData(r.Context(), widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, data)
}

func (h *dashboardHandlers) ExportDashboard(w http.ResponseWriter, r *http.Request) {
	export, err := h.DashboardSvc.ExportDashboard(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, export)
}

func (h *dashboardHandlers) ImportDashboard(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewFormatError("invalid request body"))
		return
	}
	widgets, err := h.DashboardSvc.ImportDashboard(r.Context(), body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widgets)
}

func (h *dashboardHandlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.DashboardSvc.ListTemplates(r.Context()))
}

func (h *dashboardHandlers) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "templateId")
	widgets, err := h.DashboardSvc.ApplyTemplate(r.Context(), templateID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widgets)
}

func (h *dashboardHandlers) PopularTickers(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.DashboardSvc.PopularTickers(r.Context()))
}
