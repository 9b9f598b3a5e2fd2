package dto

import (
	"time"

	"github.com/Vivek1819/FinBoard/internal/models"
)

// ExportVersion is the dashboard document format version.
const ExportVersion = 1

// DashboardExport is the import/export file format.
type DashboardExport struct {
	Version    int                   `json:"version"`
	Widgets    []models.WidgetConfig `json:"widgets"`
	ExportedAt time.Time             `json:"exportedAt"`
}
