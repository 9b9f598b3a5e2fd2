package errs

import "fmt"

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

type FormatError struct {
	ErrorMessage
}

// StorageError wraps a failure in the local dashboard store.
type StorageError struct {
	ErrorMessage
	Operation string
	Err       error
}

// HTTPError is a non-2xx response from an upstream endpoint. The cache layer
// returns it untouched; classification into user-facing categories happens in
// the polling controller and response layer.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string { return fmt.Sprintf("HTTP_%d", e.Status) }

// RateLimited reports whether the error is the canonical rate-limit signal.
// Proxy routes translate provider-embedded markers into a plain 429, so a
// status check is sufficient here.
func (e *HTTPError) RateLimited() bool { return e.Status == 429 }

// ExternalServiceError is a transport-level failure talking to an upstream.
type ExternalServiceError struct {
	ErrorMessage
	Service string
	Err     error
}

func (e *StorageError) Unwrap() error         { return e.Err }
func (e *ExternalServiceError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewFormatError(message string) *FormatError {
	return &FormatError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewStorageError(operation, message string, err error) *StorageError {
	return &StorageError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewHTTPError(status int) *HTTPError {
	return &HTTPError{Status: status}
}

func NewExternalServiceError(service, message string, err error) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Err:          err,
	}
}
