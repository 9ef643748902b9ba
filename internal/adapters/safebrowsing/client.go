package safebrowsing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mikey/llm-phishing-detector/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sb "google.golang.org/api/safebrowsing/v4"
)

// Threat types every lookup asks for
var threatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

// Client is an implementation of the ThreatIntelClient interface backed by Google Safe Browsing v4
type Client struct {
	service       *sb.Service
	clientID      string
	clientVersion string
	timeout       time.Duration
	logger        *zap.Logger
}

// NewClient creates a new Safe Browsing client
func NewClient(
	ctx context.Context,
	apiKey string,
	clientID string,
	clientVersion string,
	timeout time.Duration,
	logger *zap.Logger,
	opts ...option.ClientOption,
) (*Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := sb.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Safe Browsing service: %w", err)
	}

	return &Client{
		service:       service,
		clientID:      clientID,
		clientVersion: clientVersion,
		timeout:       timeout,
		logger:        logger,
	}, nil
}

// Check looks one URL up with threatMatches:find.
// A non-200 answer is returned as *core.UpstreamError.
func (c *Client) Check(ctx context.Context, rawURL string) (*core.ThreatCheckResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := &sb.GoogleSecuritySafebrowsingV4FindThreatMatchesRequest{
		Client: &sb.GoogleSecuritySafebrowsingV4ClientInfo{
			ClientId:      c.clientID,
			ClientVersion: c.clientVersion,
		},
		ThreatInfo: &sb.GoogleSecuritySafebrowsingV4ThreatInfo{
			ThreatTypes:      threatTypes,
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries: []*sb.GoogleSecuritySafebrowsingV4ThreatEntry{
				{Url: rawURL},
			},
		},
	}

	resp, err := c.service.ThreatMatches.Find(req).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			c.logger.Warn("Safe Browsing returned an error",
				zap.Int("status_code", apiErr.Code),
				zap.String("url", rawURL))
			return nil, &core.UpstreamError{StatusCode: apiErr.Code, Details: apiErr.Body}
		}
		return nil, fmt.Errorf("failed to query Safe Browsing: %w", err)
	}
	if code := resp.HTTPStatusCode; code != http.StatusOK {
		c.logger.Warn("Safe Browsing returned an unexpected status",
			zap.Int("status_code", code),
			zap.String("url", rawURL))
		return nil, &core.UpstreamError{
			StatusCode: code,
			Details:    fmt.Sprintf("unexpected status %d", code),
		}
	}

	return toResult(rawURL, resp.Matches)
}

func toResult(rawURL string, matches []*sb.GoogleSecuritySafebrowsingV4ThreatMatch) (*core.ThreatCheckResult, error) {
	result := &core.ThreatCheckResult{
		URLChecked: rawURL,
		Status:     core.StatusSafe,
		Threats:    []json.RawMessage{},
	}

	for _, match := range matches {
		raw, err := json.Marshal(match)
		if err != nil {
			return nil, fmt.Errorf("failed to encode threat match: %w", err)
		}
		result.Threats = append(result.Threats, raw)
	}
	if len(result.Threats) > 0 {
		result.Status = core.StatusDangerous
	}

	return result, nil
}

// DisabledClient answers every lookup with core.ErrThreatIntelNotConfigured
type DisabledClient struct{}

// Check always fails with core.ErrThreatIntelNotConfigured
func (DisabledClient) Check(context.Context, string) (*core.ThreatCheckResult, error) {
	return nil, core.ErrThreatIntelNotConfigured
}
