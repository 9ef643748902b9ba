package core

import (
	"encoding/json"
	"time"
)

// AnalysisRequest represents an email submitted for phishing analysis
type AnalysisRequest struct {
	Subject             string   `json:"subject"`
	Body                string   `json:"body"`
	URLs                []string `json:"urls" validate:"required"`
	AttachmentFilenames []string `json:"attachment_filenames" validate:"required"`
}

// URLVerdict is a URL the classifier flagged as non-benign
type URLVerdict struct {
	URL     string `json:"url"`
	Verdict string `json:"verdict"`
}

// NarrativeAnalysis is the structured explanation produced by the LLM
type NarrativeAnalysis struct {
	Summary         string   `json:"summary"`
	ThreatPhrases   []string `json:"threat_phrases"`
	Recommendations []string `json:"recommendations"`
}

// AnalysisResponse represents the result of analysing one email
type AnalysisResponse struct {
	PhishingURLs          []URLVerdict      `json:"phishing_urls"`
	SuspiciousAttachments []string          `json:"suspicious_attachments"`
	LLMAnalysis           NarrativeAnalysis `json:"llm_analysis"`
}

// Threat check statuses
const (
	StatusSafe      = "safe"
	StatusDangerous = "dangerous"
)

// ThreatCheckResult represents the outcome of a reputation lookup for one URL
type ThreatCheckResult struct {
	URLChecked string            `json:"url_checked"`
	Status     string            `json:"status"`
	Threats    []json.RawMessage `json:"threats"`
}

// VerdictEntry is a cached classifier verdict for a URL
type VerdictEntry struct {
	URL          string
	Verdict      string
	ClassifiedAt time.Time
	ExpiresAt    time.Time
}
