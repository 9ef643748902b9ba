package factory

import (
	"io"

	"github.com/mikey/llm-phishing-detector/internal/adapters/filter"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"go.uber.org/zap"
)

// FilterFactory creates mail front-ends for the detection service
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.PhishingDetectionService
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.PhishingDetectionService) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateEmailFilter creates the SMTP content filter, or nil when it is disabled
func (f *FilterFactory) CreateEmailFilter() filter.EmailFilter {
	smtpCfg := f.cfg.GetSMTP()
	if !smtpCfg.Enabled {
		return nil
	}
	return filter.NewPostfixFilter(f.service, smtpCfg, f.logger)
}

// CreateCliFilter creates a filter that prints reports to out
func (f *FilterFactory) CreateCliFilter(out io.Writer, verbose bool) *filter.CliFilter {
	return filter.NewCliFilter(f.service, out, f.logger, verbose)
}
