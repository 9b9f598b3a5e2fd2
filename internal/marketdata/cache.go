package marketdata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Vivek1819/FinBoard/internal/errs"
)

// CacheEntry is the last fetched payload for a URL and its fetch time.
type CacheEntry struct {
	Data      json.RawMessage
	Timestamp time.Time
}

// Cache deduplicates polling across widgets sharing an endpoint. Entries live
// until overwritten by a fresh fetch, swept, or cleared; a failed fetch never
// touches the stored entry, so other readers keep last-known-good data while
// the failing caller gets the error.
type Cache struct {
	mu      sync.Mutex
	entries map[string]CacheEntry
	client  *http.Client
	now     func() time.Time
	maxTTL  time.Duration
}

func NewCache(client *http.Client) *Cache {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Cache{
		entries: make(map[string]CacheEntry),
		client:  client,
		now:     time.Now,
	}
}

// GetOrFetch returns the cached payload for url if it is younger than ttl,
// otherwise performs a GET and stores the result. Two concurrent misses on
// the same URL may both fetch; last write wins, which is acceptable because
// both hit the same endpoint.
func (c *Cache) GetOrFetch(ctx context.Context, url string, ttl time.Duration) (json.RawMessage, error) {
	now := c.now()

	c.mu.Lock()
	if ttl > c.maxTTL {
		c.maxTTL = ttl
	}
	if entry, ok := c.entries[url]; ok && now.Sub(entry.Timestamp) < ttl {
		c.mu.Unlock()
		return entry.Data, nil
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.NewExternalServiceError("cache", "invalid request URL", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.NewExternalServiceError("cache", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.NewHTTPError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewExternalServiceError("cache", "failed to read response body", err)
	}
	if !json.Valid(body) {
		return nil, errs.NewExternalServiceError("cache", "response is not valid JSON", nil)
	}

	c.mu.Lock()
	c.entries[url] = CacheEntry{Data: body, Timestamp: now}
	c.mu.Unlock()

	return body, nil
}

// Clear drops every entry. Administrative escape hatch.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// Size reports the number of cached URLs.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes entries older than three times the largest TTL any caller has
// requested, and reports how many were dropped. The original kept entries
// forever; a long-lived process needs the bound.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxTTL <= 0 {
		return 0
	}
	cutoff := c.now().Add(-3 * c.maxTTL)
	removed := 0
	for url, entry := range c.entries {
		if entry.Timestamp.Before(cutoff) {
			delete(c.entries, url)
			removed++
		}
	}
	return removed
}
