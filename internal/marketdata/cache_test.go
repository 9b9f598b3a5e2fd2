package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vivek1819/FinBoard/internal/errs"
)

// fakeClock lets tests move cache time without sleeping.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(t *testing.T, handler http.HandlerFunc) (*Cache, *fakeClock, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache(srv.Client())
	c.now = clock.Now
	return c, clock, srv
}

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	calls := 0
	c, _, srv := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"call":%d}`, calls)
	})

	first, err := c.GetOrFetch(context.Background(), srv.URL, 30*time.Second)
	require.NoError(t, err)

	second, err := c.GetOrFetch(context.Background(), srv.URL, 30*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second call within TTL must be served from cache")
	assert.Equal(t, string(first), string(second))
}

func TestGetOrFetchRefetchesAfterTTL(t *testing.T) {
	calls := 0
	c, clock, srv := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"call":%d}`, calls)
	})

	_, err := c.GetOrFetch(context.Background(), srv.URL, 30*time.Second)
	require.NoError(t, err)

	clock.Advance(31 * time.Second)

	fresh, err := c.GetOrFetch(context.Background(), srv.URL, 30*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, `{"call":2}`, string(fresh))
}

func TestGetOrFetchPerURLTTL(t *testing.T) {
	calls := map[string]int{}
	c, _, srv := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		calls[r.URL.Path]++
		fmt.Fprint(w, `{}`)
	})

	_, err := c.GetOrFetch(context.Background(), srv.URL+"/a", 30*time.Second)
	require.NoError(t, err)
	_, err = c.GetOrFetch(context.Background(), srv.URL+"/b", 30*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 1, calls["/a"])
	assert.Equal(t, 1, calls["/b"])
	assert.Equal(t, 2, c.Size())
}

func TestGetOrFetchHTTPErrorStatus(t *testing.T) {
	c, _, srv := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.GetOrFetch(context.Background(), srv.URL, time.Second)
	require.Error(t, err)

	httpErr, ok := err.(*errs.HTTPError)
	require.True(t, ok, "expected *errs.HTTPError, got %T", err)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)
	assert.Equal(t, "HTTP_429", httpErr.Error())
	assert.True(t, httpErr.RateLimited())
}

func TestGetOrFetchFailurePreservesEntry(t *testing.T) {
	fail := false
	c, clock, srv := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"price":42}`)
	})

	good, err := c.GetOrFetch(context.Background(), srv.URL, 10*time.Second)
	require.NoError(t, err)

	fail = true
	clock.Advance(11 * time.Second)

	_, err = c.GetOrFetch(context.Background(), srv.URL, 10*time.Second)
	require.Error(t, err)

	// The stale entry survives the failed refresh and is still served to a
	// caller whose TTL tolerates it.
	stale, err := c.GetOrFetch(context.Background(), srv.URL, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, string(good), string(stale))
}

func TestGetOrFetchRejectsInvalidJSON(t *testing.T) {
	c, _, srv := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	})

	_, err := c.GetOrFetch(context.Background(), srv.URL, time.Second)
	require.Error(t, err)
	assert.Equal(t, 0, c.Size())
}

func TestClear(t *testing.T) {
	c, _, srv := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	_, err := c.GetOrFetch(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestSweepDropsExpiredEntries(t *testing.T) {
	c, clock, srv := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	_, err := c.GetOrFetch(context.Background(), srv.URL+"/old", 10*time.Second)
	require.NoError(t, err)

	clock.Advance(29 * time.Second)
	_, err = c.GetOrFetch(context.Background(), srv.URL+"/new", 10*time.Second)
	require.NoError(t, err)

	// /old is still within the 3x retention horizon.
	assert.Equal(t, 0, c.Sweep())

	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Size())
}
