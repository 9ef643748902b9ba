package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/llm-phishing-detector/internal/utils"
	"go.uber.org/zap"
)

// FallbackSummary is reported when the LLM cannot produce a usable analysis
const FallbackSummary = "Unable to generate analysis."

const narrativePromptFormat = `You are a cybersecurity analyst.

Given the following email components:
Subject: %s
Body: %s
URLs: %s
Attachments: %s

Perform a phishing risk analysis. Your JSON output must include:
- "summary": One paragraph summarizing phishing risks.
- "threat_phrases": List of suspicious or threatening phrases from the body.
- "recommendations": List of suggested actions for the user.

Respond strictly in JSON.`

// DefaultNarrativeAnalysis returns the analysis used when the LLM call or parsing fails
func DefaultNarrativeAnalysis() NarrativeAnalysis {
	return NarrativeAnalysis{
		Summary:         FallbackSummary,
		ThreatPhrases:   []string{},
		Recommendations: []string{},
	}
}

// NarrativeAnalyzer asks an LLM for a structured phishing risk explanation
type NarrativeAnalyzer struct {
	llmClient     LLMClient
	textProcessor *utils.TextProcessor
	maxBodySize   int
	logger        *zap.Logger
}

// NewNarrativeAnalyzer creates a new narrative analyzer.
// A maxBodySize of zero embeds the body untouched.
func NewNarrativeAnalyzer(llmClient LLMClient, textProcessor *utils.TextProcessor, maxBodySize int, logger *zap.Logger) *NarrativeAnalyzer {
	return &NarrativeAnalyzer{
		llmClient:     llmClient,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
		logger:        logger,
	}
}

// BuildPrompt renders the analysis prompt for the given email fields
func (a *NarrativeAnalyzer) BuildPrompt(subject, body string, urls, attachments []string) string {
	if a.textProcessor != nil {
		body = a.textProcessor.ProcessText(body, a.maxBodySize)
	}
	return fmt.Sprintf(narrativePromptFormat, subject, body, formatList(urls), formatList(attachments))
}

// Analyze runs the narrative analysis. It never fails: any LLM or parsing
// error yields DefaultNarrativeAnalysis.
func (a *NarrativeAnalyzer) Analyze(ctx context.Context, subject, body string, urls, attachments []string) (NarrativeAnalysis, bool) {
	prompt := a.BuildPrompt(subject, body, urls, attachments)

	text, err := a.llmClient.GenerateContent(ctx, prompt)
	if err != nil {
		a.logger.Warn("LLM error, using default analysis", zap.Error(err))
		return DefaultNarrativeAnalysis(), false
	}

	analysis, err := ParseNarrative(text)
	if err != nil {
		a.logger.Warn("Failed to parse LLM analysis, using default analysis",
			zap.Error(err),
			zap.Int("response_length", len(text)))
		return DefaultNarrativeAnalysis(), false
	}

	return analysis, true
}

// ParseNarrative decodes the model output into a NarrativeAnalysis.
// JSON wrapped in prose or code fences is extracted first.
func ParseNarrative(text string) (NarrativeAnalysis, error) {
	var analysis NarrativeAnalysis

	text = strings.TrimSpace(text)
	if text == "" {
		return analysis, errors.New("empty response from LLM")
	}

	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		jsonStr, ok := utils.ExtractJSONObject(text)
		if !ok {
			return analysis, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		analysis = NarrativeAnalysis{}
		if err := json.Unmarshal([]byte(jsonStr), &analysis); err != nil {
			return analysis, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}

	if analysis.Summary == "" {
		return analysis, errors.New("LLM response is missing a summary")
	}
	if analysis.ThreatPhrases == nil {
		analysis.ThreatPhrases = []string{}
	}
	if analysis.Recommendations == nil {
		analysis.Recommendations = []string{}
	}

	return analysis, nil
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
