package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// BenignVerdict is the classifier label for a legitimate URL
const BenignVerdict = "Given website is a legitimate site"

// URL outcome labels reported to metrics
const (
	URLResultPhishing = "phishing"
	URLResultBenign   = "benign"
	URLResultInvalid  = "invalid"
)

// Threat check outcomes reported to metrics besides the result status
const (
	ThreatCheckError        = "error"
	ThreatCheckUnconfigured = "unconfigured"
)

// ServiceOptions holds the tunables of the detection service
type ServiceOptions struct {
	BenignLabel string
}

// PhishingDetectionService is the core service for phishing detection
type PhishingDetectionService struct {
	verdictProvider VerdictProvider
	narrative       *NarrativeAnalyzer
	threatIntel     ThreatIntelClient
	validator       *URLValidator
	benignLabel     string
	metrics         MetricsRecorder
	logger          *zap.Logger
}

// NewPhishingDetectionService creates a new phishing detection service
func NewPhishingDetectionService(
	verdictProvider VerdictProvider,
	narrative *NarrativeAnalyzer,
	threatIntel ThreatIntelClient,
	validator *URLValidator,
	metrics MetricsRecorder,
	opts ServiceOptions,
	logger *zap.Logger,
) *PhishingDetectionService {
	if opts.BenignLabel == "" {
		opts.BenignLabel = BenignVerdict
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &PhishingDetectionService{
		verdictProvider: verdictProvider,
		narrative:       narrative,
		threatIntel:     threatIntel,
		validator:       validator,
		benignLabel:     opts.BenignLabel,
		metrics:         metrics,
		logger:          logger,
	}
}

// AnalyzeEmail classifies the URLs and attachments of an email and asks the
// LLM for a narrative. The phases run in a fixed order: URLs, attachments,
// narrative. Invalid URLs are skipped; a classifier failure aborts the request.
func (s *PhishingDetectionService) AnalyzeEmail(ctx context.Context, req *AnalysisRequest) (*AnalysisResponse, error) {
	start := time.Now()

	resp := &AnalysisResponse{
		PhishingURLs:          []URLVerdict{},
		SuspiciousAttachments: []string{},
	}

	for _, u := range req.URLs {
		if !s.validator.IsValid(u) {
			s.logger.Warn("Skipping invalid URL", zap.String("url", u))
			s.metrics.ObserveURL(URLResultInvalid)
			continue
		}

		verdict, err := s.verdictProvider.Predict(ctx, u)
		if err != nil {
			s.metrics.ObserveAnalysis("error", time.Since(start).Seconds())
			return nil, &ClassifierError{URL: u, Err: err}
		}

		if verdict == s.benignLabel {
			s.metrics.ObserveURL(URLResultBenign)
			continue
		}

		s.logger.Debug("URL flagged by classifier",
			zap.String("url", u),
			zap.String("verdict", verdict))
		s.metrics.ObserveURL(URLResultPhishing)
		resp.PhishingURLs = append(resp.PhishingURLs, URLVerdict{URL: u, Verdict: verdict})
	}

	for _, name := range req.AttachmentFilenames {
		suspicious := IsSuspiciousAttachment(name)
		s.metrics.ObserveAttachment(suspicious)
		if suspicious {
			resp.SuspiciousAttachments = append(resp.SuspiciousAttachments, name)
		}
	}

	analysis, ok := s.narrative.Analyze(ctx, req.Subject, req.Body, req.URLs, req.AttachmentFilenames)
	if !ok {
		s.metrics.ObserveNarrativeFallback()
	}
	resp.LLMAnalysis = analysis

	s.metrics.ObserveAnalysis("ok", time.Since(start).Seconds())
	s.logger.Info("Analyzed email",
		zap.Int("urls", len(req.URLs)),
		zap.Int("phishing_urls", len(resp.PhishingURLs)),
		zap.Int("attachments", len(req.AttachmentFilenames)),
		zap.Int("suspicious_attachments", len(resp.SuspiciousAttachments)),
		zap.Bool("narrative_ok", ok))

	return resp, nil
}

// CheckURL looks the URL up against the reputation service
func (s *PhishingDetectionService) CheckURL(ctx context.Context, rawURL string) (*ThreatCheckResult, error) {
	if !s.validator.IsValid(rawURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	if s.threatIntel == nil {
		s.metrics.ObserveThreatCheck(ThreatCheckUnconfigured)
		return nil, ErrThreatIntelNotConfigured
	}

	result, err := s.threatIntel.Check(ctx, rawURL)
	if err != nil {
		if errors.Is(err, ErrThreatIntelNotConfigured) {
			s.metrics.ObserveThreatCheck(ThreatCheckUnconfigured)
		} else {
			s.metrics.ObserveThreatCheck(ThreatCheckError)
		}
		return nil, err
	}

	s.metrics.ObserveThreatCheck(result.Status)
	s.logger.Info("Checked URL reputation",
		zap.String("url", rawURL),
		zap.String("status", result.Status),
		zap.Int("threats", len(result.Threats)))

	return result, nil
}
