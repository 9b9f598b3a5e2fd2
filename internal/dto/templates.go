package dto

import "github.com/Vivek1819/FinBoard/internal/models"

// DashboardTemplate is a predefined dashboard a user can apply in one step.
type DashboardTemplate struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Widgets     []models.WidgetConfig `json:"widgets"`
}
