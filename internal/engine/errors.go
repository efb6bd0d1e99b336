package engine

import (
	"errors"
	"net/http"
)

// Partial-result reasons attached to a playlist scrape that stopped early.
const (
	PartialTimeout             = "TIMEOUT"
	PartialContinuationTimeout = "CONTINUATION_TIMEOUT"
	PartialContinuationError   = "CONTINUATION_ERROR"
	PartialBatchLimitExceeded  = "BATCH_LIMIT_EXCEEDED"
)

// AppError is a client-facing failure with a stable machine-readable code
// and the HTTP status it maps to. All validation and upstream failures
// surfaced by the service layer are AppErrors.
type AppError struct {
	Code    string
	Status  int
	Message string
	Reason  error
}

func (e *AppError) Error() string {
	if e.Reason != nil {
		return e.Message + ": " + e.Reason.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Reason }

// AsAppError unwraps err to an AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// MissingParameter is a 400 for an absent required parameter.
func MissingParameter(message string) *AppError {
	return &AppError{Code: "MISSING_PARAMETER", Status: http.StatusBadRequest, Message: message}
}

// InvalidParameter is a 400 for a present but malformed parameter.
func InvalidParameter(message, code string) *AppError {
	return &AppError{Code: code, Status: http.StatusBadRequest, Message: message}
}

// ServiceUnavailable is a 503 for an unreachable upstream.
func ServiceUnavailable(message string) *AppError {
	return &AppError{Code: "YOUTUBE_UNAVAILABLE", Status: http.StatusServiceUnavailable, Message: message}
}

// ScrapingError is a 502 for an upstream page that could not be parsed.
func ScrapingError(message string, reason error) *AppError {
	return &AppError{Code: "PLAYLIST_SCRAPING_ERROR", Status: http.StatusBadGateway, Message: message, Reason: reason}
}
