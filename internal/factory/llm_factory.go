package factory

import (
	"context"
	"fmt"

	"github.com/mikey/llm-phishing-detector/internal/adapters/anthropic"
	"github.com/mikey/llm-phishing-detector/internal/adapters/bedrock"
	"github.com/mikey/llm-phishing-detector/internal/adapters/gemini"
	"github.com/mikey/llm-phishing-detector/internal/adapters/openai"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"go.uber.org/zap"
)

// LLMFactory creates LLM clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates a new LLM client based on the configuration.
// A provider without an API key yields a client that always fails.
func (f *LLMFactory) CreateLLMClient() (core.LLMClient, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "gemini":
		if f.cfg.GetGemini().APIKey == "" {
			return f.disabled(llmConfig.Provider), nil
		}
		return gemini.NewFactory(f.cfg, f.logger).CreateClient()
	case "openai":
		if f.cfg.GetOpenAI().APIKey == "" {
			return f.disabled(llmConfig.Provider), nil
		}
		return openai.NewFactory(f.cfg, f.logger).CreateClient()
	case "anthropic":
		if f.cfg.GetAnthropic().APIKey == "" {
			return f.disabled(llmConfig.Provider), nil
		}
		return anthropic.NewFactory(f.cfg, f.logger).CreateClient()
	case "bedrock":
		// AWS credentials come from the default chain
		return bedrock.NewFactory(f.cfg, f.logger).CreateClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}

func (f *LLMFactory) disabled(provider string) core.LLMClient {
	f.logger.Warn("LLM API key is not set, narrative analysis will use the default response",
		zap.String("provider", provider))
	return disabledLLMClient{}
}

type disabledLLMClient struct{}

func (disabledLLMClient) GenerateContent(context.Context, string) (string, error) {
	return "", core.ErrLLMNotConfigured
}
