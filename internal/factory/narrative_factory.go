package factory

import (
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/mikey/llm-phishing-detector/internal/utils"
	"go.uber.org/zap"
)

// NarrativeFactory creates the text processor and the narrative analyzer built on it
type NarrativeFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNarrativeFactory creates a new NarrativeFactory
func NewNarrativeFactory(cfg *config.Config, logger *zap.Logger) *NarrativeFactory {
	return &NarrativeFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *NarrativeFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreateNarrativeAnalyzer creates a narrative analyzer around the given LLM client
func (f *NarrativeFactory) CreateNarrativeAnalyzer(llmClient core.LLMClient, tp *utils.TextProcessor) *core.NarrativeAnalyzer {
	return core.NewNarrativeAnalyzer(llmClient, tp, f.cfg.GetLLM().MaxBodySize, f.logger)
}
