package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when a URL fails syntactic validation
	ErrInvalidURL = errors.New("invalid URL")
	// ErrThreatIntelNotConfigured is returned when no reputation API key is set
	ErrThreatIntelNotConfigured = errors.New("threat intelligence API key is not configured")
	// ErrLLMNotConfigured is returned by a disabled LLM client
	ErrLLMNotConfigured = errors.New("LLM API key is not configured")
	// ErrCacheMiss is returned by a CacheRepository for an absent or expired entry
	ErrCacheMiss = errors.New("cache entry not found")
)

// UpstreamError carries a non-200 response from the reputation service
type UpstreamError struct {
	StatusCode int
	Details    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Safe Browsing API request failed with status %d", e.StatusCode)
}

// ClassifierError wraps a failure of the URL verdict provider
type ClassifierError struct {
	URL string
	Err error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("failed to classify URL %q: %v", e.URL, e.Err)
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}
