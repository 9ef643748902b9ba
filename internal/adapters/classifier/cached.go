package classifier

import (
	"context"
	"errors"
	"time"

	"github.com/mikey/llm-phishing-detector/internal/core"
	"go.uber.org/zap"
)

// Cached wraps a VerdictProvider with a verdict cache. Cache failures are
// logged and never fail a prediction.
type Cached struct {
	next   core.VerdictProvider
	repo   core.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewCached creates a caching VerdictProvider
func NewCached(next core.VerdictProvider, repo core.CacheRepository, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{
		next:   next,
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Predict returns the cached verdict for rawURL or asks the wrapped provider
func (c *Cached) Predict(ctx context.Context, rawURL string) (string, error) {
	entry, err := c.repo.Get(ctx, rawURL)
	if err == nil {
		c.logger.Debug("Verdict cache hit", zap.String("url", rawURL))
		return entry.Verdict, nil
	}
	if !errors.Is(err, core.ErrCacheMiss) {
		c.logger.Warn("Failed to read verdict cache", zap.Error(err), zap.String("url", rawURL))
	}

	verdict, err := c.next.Predict(ctx, rawURL)
	if err != nil {
		return "", err
	}

	now := c.now()
	if err := c.repo.Set(ctx, &core.VerdictEntry{
		URL:          rawURL,
		Verdict:      verdict,
		ClassifiedAt: now,
		ExpiresAt:    now.Add(c.ttl),
	}); err != nil {
		c.logger.Warn("Failed to store verdict", zap.Error(err), zap.String("url", rawURL))
	}

	return verdict, nil
}
