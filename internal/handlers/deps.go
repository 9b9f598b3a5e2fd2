package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Vivek1819/FinBoard/internal/config"
	"github.com/Vivek1819/FinBoard/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	Config          *config.Config
	ResponseHandler response.ResponseHandler
	DashboardSvc    DashboardService
	FieldSvc        FieldService
	ProxyClient     *http.Client
}
