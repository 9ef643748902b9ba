package factory

import (
	"fmt"

	"github.com/mikey/llm-phishing-detector/internal/adapters/classifier"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/mikey/llm-phishing-detector/internal/whitelist"
	"go.uber.org/zap"
)

// ClassifierFactory creates URL verdict providers
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateVerdictProvider creates the configured verdict provider. When repo
// is non-nil the provider is wrapped with the verdict cache.
func (f *ClassifierFactory) CreateVerdictProvider(repo core.CacheRepository) (core.VerdictProvider, error) {
	clsCfg := f.cfg.GetClassifier()

	var provider core.VerdictProvider
	switch clsCfg.Type {
	case "heuristic":
		provider = classifier.NewHeuristic(classifier.HeuristicOptions{
			Threshold:     clsCfg.Threshold,
			BenignLabel:   clsCfg.BenignLabel,
			PhishingLabel: clsCfg.PhishingLabel,
		}, whitelist.NewChecker(clsCfg.TrustedDomains, f.logger), f.logger)
	case "remote":
		if clsCfg.Endpoint == "" {
			return nil, fmt.Errorf("classifier endpoint is required for the remote classifier")
		}
		provider = classifier.NewRemote(clsCfg.Endpoint, clsCfg.Timeout, f.logger)
	default:
		return nil, fmt.Errorf("unsupported classifier type: %s", clsCfg.Type)
	}

	if repo == nil {
		return provider, nil
	}

	ttl := f.cfg.GetCache().TTL
	f.logger.Info("Verdict cache enabled", zap.Duration("ttl", ttl))
	return classifier.NewCached(provider, repo, ttl, f.logger), nil
}
