package response

import (
	"encoding/json"
	"net/http"

	"github.com/Vivek1819/FinBoard/internal/errs"
	"github.com/Vivek1819/FinBoard/pkg/logger"
)

type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	log := logger.FromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorEnvelope{Error: ErrorBody{Code: code, Message: message}}); err != nil {
		log.Error("failed to encode error response", "error", err)
	}
}

// HandleError maps domain errors onto HTTP statuses. Anything unrecognized
// is a 500 with a generic message so internals never leak to clients.
func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch e := err.(type) {
	case *errs.NotFoundError:
		h.WriteError(w, r, http.StatusNotFound, "not_found", e.Error())
	case *errs.ValidationError:
		h.WriteError(w, r, http.StatusBadRequest, "invalid_input", e.Error())
	case *errs.FormatError:
		h.WriteError(w, r, http.StatusBadRequest, "invalid_format", e.Error())
	case *errs.HTTPError:
		if e.RateLimited() {
			h.WriteError(w, r, http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded")
			return
		}
		log.Error("upstream request failed", "error", err)
		h.WriteError(w, r, http.StatusBadGateway, "upstream_error", "upstream request failed")
	case *errs.StorageError:
		log.Error("storage operation failed", "error", err)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	case *errs.ExternalServiceError:
		log.Error("external service failed", "service", e.Service, "error", err)
		h.WriteError(w, r, http.StatusBadGateway, "upstream_error", "upstream request failed")
	default:
		log.Error("unhandled error", "error", err)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
