package response

import (
	"encoding/json"
	"net/http"

	"github.com/Vivek1819/FinBoard/pkg/logger"
)

type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func (h *responseHandler) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	log := logger.FromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(SuccessEnvelope{Success: true, Data: data}); err != nil {
		log.Error("failed to encode success response", "error", err)
	}
}
