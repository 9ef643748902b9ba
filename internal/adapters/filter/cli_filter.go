package filter

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/mikey/llm-phishing-detector/internal/mailparse"
	"go.uber.org/zap"
)

// CliFilter analyses a single message and prints a human-readable report
type CliFilter struct {
	service Analyzer
	out     io.Writer
	logger  *zap.Logger
	verbose bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service Analyzer, out io.Writer, logger *zap.Logger, verbose bool) *CliFilter {
	return &CliFilter{
		service: service,
		out:     out,
		logger:  logger,
		verbose: verbose,
	}
}

// ProcessMessage parses a raw message from r, analyses it and prints the results
func (f *CliFilter) ProcessMessage(ctx context.Context, r io.Reader) (*core.AnalysisResponse, error) {
	req, err := mailparse.Parse(r)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "Subject: %s\n", req.Subject)
	fmt.Fprintf(f.out, "Body length: %d bytes\n", len(req.Body))
	fmt.Fprintf(f.out, "URLs: %d\n", len(req.URLs))
	fmt.Fprintf(f.out, "Attachments: %s\n", listOrNone(req.AttachmentFilenames))

	if f.verbose {
		preview := req.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", preview)
	}

	fmt.Fprintf(f.out, "\n=== Analysis ===\n")
	startTime := time.Now()
	result, err := f.service.AnalyzeEmail(ctx, req)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		return nil, err
	}
	duration := time.Since(startTime)

	f.PrintResult(result)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return result, nil
}

// PrintResult writes the analysis result as a report
func (f *CliFilter) PrintResult(result *core.AnalysisResponse) {
	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Phishing: %t\n", IsPhishing(result))

	fmt.Fprintf(f.out, "Phishing URLs:\n")
	if len(result.PhishingURLs) == 0 {
		fmt.Fprintf(f.out, "  (none)\n")
	}
	for _, v := range result.PhishingURLs {
		fmt.Fprintf(f.out, "  - %s (%s)\n", v.URL, v.Verdict)
	}

	fmt.Fprintf(f.out, "Suspicious attachments: %s\n", listOrNone(result.SuspiciousAttachments))
	fmt.Fprintf(f.out, "Summary: %s\n", result.LLMAnalysis.Summary)
	fmt.Fprintf(f.out, "Threat phrases: %s\n", listOrNone(result.LLMAnalysis.ThreatPhrases))
	fmt.Fprintf(f.out, "Recommendations: %s\n", listOrNone(result.LLMAnalysis.Recommendations))
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
