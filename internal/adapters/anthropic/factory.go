package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"go.uber.org/zap"
)

// Factory creates new instances of AnthropicClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for AnthropicClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClient creates a new AnthropicClient
func (f *Factory) CreateClient() (*AnthropicClient, error) {
	anthropicCfg := f.cfg.GetAnthropic()

	var opts []option.RequestOption
	if anthropicCfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(anthropicCfg.BaseURL))
	}

	return NewAnthropicClient(
		anthropicCfg.APIKey,
		anthropicCfg.ModelName,
		anthropicCfg.MaxTokens,
		anthropicCfg.Temperature,
		f.logger,
		opts...,
	), nil
}
