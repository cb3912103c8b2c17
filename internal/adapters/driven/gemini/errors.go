package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/insectopedia/insectopedia/internal/adapters/driven/ratelimit"
	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// Common Gemini API errors.
var (
	// ErrUnauthorized indicates an invalid API key.
	ErrUnauthorized = errors.New("gemini: unauthorised (invalid API key)")

	// ErrForbidden indicates the key may not use the API or model.
	ErrForbidden = errors.New("gemini: forbidden (API not enabled for this key)")

	// ErrModelNotFound indicates the configured model does not exist.
	ErrModelNotFound = errors.New("gemini: model not found")
)

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// RetryAfter extracts the server's requested backoff from a 429 error.
func RetryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Header != nil {
		return ratelimit.RetryAfter(gerr.Header)
	}
	return 0
}

// WrapError converts a Google API error into a more specific error.
// Rate limiting wraps domain.ErrRateLimited and keeps the original error.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusBadRequest:
		if gerr.Message != "" {
			return fmt.Errorf("gemini: bad request: %s", gerr.Message)
		}
		return err
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return fmt.Errorf("gemini: %w: %w", domain.ErrRateLimited, err)
	default:
		return err
	}
}
