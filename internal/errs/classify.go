package errs

import "errors"

// IsRateLimit reports whether err carries the canonical HTTP 429 signal.
func IsRateLimit(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.RateLimited()
}
