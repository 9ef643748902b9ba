package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type predictRequest struct {
	URL string `json:"url"`
}

type predictResponse struct {
	Verdict string `json:"verdict"`
}

// Remote is a VerdictProvider that delegates to an HTTP model server
type Remote struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewRemote creates a remote classifier posting to endpoint
func NewRemote(endpoint string, timeout time.Duration, logger *zap.Logger) *Remote {
	return &Remote{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Predict posts {"url": ...} and returns the "verdict" field of the reply
func (r *Remote) Predict(ctx context.Context, rawURL string) (string, error) {
	body, err := json.Marshal(predictRequest{URL: rawURL})
	if err != nil {
		return "", fmt.Errorf("failed to encode classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if out.Verdict == "" {
		return "", fmt.Errorf("classifier response has no verdict")
	}

	return out.Verdict, nil
}
