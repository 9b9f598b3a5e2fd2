package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Vivek1819/FinBoard/internal/dto"
	"github.com/Vivek1819/FinBoard/internal/errs"
	"github.com/Vivek1819/FinBoard/internal/marketdata"
	"github.com/Vivek1819/FinBoard/internal/models"
)

// previewTTL caps how often repeated previews of the same URL hit the network
// while a user is clicking around the widget configuration form.
const previewTTL = 30 * time.Second

type fetcher interface {
	GetOrFetch(ctx context.Context, url string, ttl time.Duration) (json.RawMessage, error)
}

type fieldService struct {
	fetch fetcher
}

func NewFieldService(fetch fetcher) *fieldService {
	return &fieldService{fetch: fetch}
}

// PreviewFields fetches a sample response from url and returns the flattened
// field paths a widget can bind to, plus the provider the URL resolves to.
func (s *fieldService) PreviewFields(ctx context.Context, url string) (dto.FieldPreviewResponse, error) {
	if url == "" {
		return dto.FieldPreviewResponse{}, errs.NewValidationError("url is required")
	}
	raw, err := s.fetch.GetOrFetch(ctx, url, previewTTL)
	if err != nil {
		return dto.FieldPreviewResponse{}, err
	}
	fields := marketdata.ExtractFields(raw)
	if fields == nil {
		fields = []models.Field{}
	}
	return dto.FieldPreviewResponse{
		Provider: marketdata.DetectProvider(url),
		Fields:   fields,
	}, nil
}
