package core

import (
	"context"
)

// VerdictProvider maps a syntactically valid URL to a classifier verdict
type VerdictProvider interface {
	// Predict returns the classifier label for the URL
	Predict(ctx context.Context, url string) (string, error)
}

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// GenerateContent sends a prompt and returns the raw model text
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// ThreatIntelClient looks up a URL against an external reputation service
type ThreatIntelClient interface {
	Check(ctx context.Context, url string) (*ThreatCheckResult, error)
}

// CacheRepository defines the interface for caching URL verdicts
type CacheRepository interface {
	// Get retrieves a cached verdict for a URL
	Get(ctx context.Context, url string) (*VerdictEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *VerdictEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, url string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// MetricsRecorder receives counters from the detection service
type MetricsRecorder interface {
	ObserveURL(result string)
	ObserveAttachment(suspicious bool)
	ObserveNarrativeFallback()
	ObserveAnalysis(outcome string, seconds float64)
	ObserveThreatCheck(status string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveURL(string)               {}
func (nopMetrics) ObserveAttachment(bool)          {}
func (nopMetrics) ObserveNarrativeFallback()       {}
func (nopMetrics) ObserveAnalysis(string, float64) {}
func (nopMetrics) ObserveThreatCheck(string)       {}
