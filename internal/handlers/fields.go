package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vivek1819/FinBoard/internal/dto"
	"github.com/Vivek1819/FinBoard/internal/errs"
	"github.com/Vivek1819/FinBoard/internal/response"
)

type FieldService interface {
	PreviewFields(ctx context.Context, url string) (dto.FieldPreviewResponse, error)
}

type fieldHandlers struct {
	ResponseHandler response.ResponseHandler
	FieldSvc        FieldService
}

func NewFieldHandlers(deps *Deps) *fieldHandlers {
	return &fieldHandlers{
		ResponseHandler: deps.ResponseHandler,
		FieldSvc:        deps.FieldSvc,
	}
}

func (h *fieldHandlers) FieldRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/preview", h.PreviewFields)
	return r
}

// PreviewFields fetches an arbitrary API URL and returns the flattened
// field paths found in its response, so a widget can be configured
// before it is saved.
func (h *fieldHandlers) PreviewFields(w http.ResponseWriter, r *http.Request) {
	var req dto.FieldPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewFormatError("invalid request body"))
		return
	}
	preview, err := h.FieldSvc.PreviewFields(r.Context(), req.URL)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, preview)
}
