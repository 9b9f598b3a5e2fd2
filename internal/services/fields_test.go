package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Vivek1819/FinBoard/internal/errs"
	"github.com/Vivek1819/FinBoard/internal/models"
	"github.com/Vivek1819/FinBoard/pkg/helpers"
)

type fakeFetcher struct {
	raw     json.RawMessage
	err     error
	lastURL string
	lastTTL time.Duration
}

func (f *fakeFetcher) GetOrFetch(_ context.Context, url string, ttl time.Duration) (json.RawMessage, error) {
	f.lastURL = url
	f.lastTTL = ttl
	return f.raw, f.err
}

func TestPreviewFields(t *testing.T) {
	fetch := &fakeFetcher{raw: json.RawMessage(`{"a":{"b":1,"c":"s"},"d":[{"e":true}]}`)}
	svc := NewFieldService(fetch)

	preview, err := svc.PreviewFields(helpers.TestCtx(), "https://api.coingecko.com/api/v3/coins/markets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preview.Provider != models.ProviderCoinGecko {
		t.Errorf("expected coingecko provider, got %q", preview.Provider)
	}
	want := []models.Field{
		{Path: "a.b", Type: "number"},
		{Path: "a.c", Type: "string"},
		{Path: "d.e", Type: "boolean"},
	}
	if len(preview.Fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(preview.Fields))
	}
	for i := range want {
		if preview.Fields[i] != want[i] {
			t.Errorf("field %d: expected %+v, got %+v", i, want[i], preview.Fields[i])
		}
	}
	if fetch.lastTTL != previewTTL {
		t.Errorf("expected preview TTL %v, got %v", previewTTL, fetch.lastTTL)
	}
}

func TestPreviewFieldsEmptyURL(t *testing.T) {
	svc := NewFieldService(&fakeFetcher{})

	_, err := svc.PreviewFields(helpers.TestCtx(), "")
	if _, ok := err.(*errs.ValidationError); !ok {
		t.Errorf("expected *errs.ValidationError, got %T", err)
	}
}

func TestPreviewFieldsFetchError(t *testing.T) {
	svc := NewFieldService(&fakeFetcher{err: errs.NewHTTPError(429)})

	_, err := svc.PreviewFields(helpers.TestCtx(), "https://example.com/data.json")
	httpErr, ok := err.(*errs.HTTPError)
	if !ok {
		t.Fatalf("expected *errs.HTTPError, got %T", err)
	}
	if !httpErr.RateLimited() {
		t.Error("expected the rate-limit signal to pass through")
	}
}

func TestPreviewFieldsScalarPayload(t *testing.T) {
	svc := NewFieldService(&fakeFetcher{raw: json.RawMessage(`42`)})

	preview, err := svc.PreviewFields(helpers.TestCtx(), "https://example.com/data.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if preview.Fields == nil || len(preview.Fields) != 0 {
		t.Errorf("expected an empty, non-nil field list, got %#v", preview.Fields)
	}
}
