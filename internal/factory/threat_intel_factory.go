package factory

import (
	"context"

	"github.com/mikey/llm-phishing-detector/internal/adapters/safebrowsing"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ThreatIntelFactory creates reputation lookup clients
type ThreatIntelFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewThreatIntelFactory creates a new threat intelligence factory
func NewThreatIntelFactory(cfg *config.Config, logger *zap.Logger) *ThreatIntelFactory {
	return &ThreatIntelFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateThreatIntelClient creates a Safe Browsing client, or a disabled
// client when no API key is configured
func (f *ThreatIntelFactory) CreateThreatIntelClient() (core.ThreatIntelClient, error) {
	tiCfg := f.cfg.GetThreatIntel()

	if tiCfg.APIKey == "" {
		f.logger.Warn("Safe Browsing API key is not set, URL reputation checks are disabled")
		return safebrowsing.DisabledClient{}, nil
	}

	var opts []option.ClientOption
	if tiCfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(tiCfg.Endpoint))
	}

	return safebrowsing.NewClient(
		context.Background(),
		tiCfg.APIKey,
		tiCfg.ClientID,
		tiCfg.ClientVersion,
		tiCfg.Timeout,
		f.logger,
		opts...,
	)
}
