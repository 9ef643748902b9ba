package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-phishing-detector/internal/adapters/cache"
	"github.com/mikey/llm-phishing-detector/internal/adapters/filter"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/mikey/llm-phishing-detector/internal/factory"
	"github.com/mikey/llm-phishing-detector/internal/logging"
	"github.com/mikey/llm-phishing-detector/internal/metrics"
	"github.com/mikey/llm-phishing-detector/internal/server"
	"github.com/mikey/llm-phishing-detector/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.NewAtomicLevel); err != nil {
		return nil, err
	}
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(func() *prometheus.Registry {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return registry
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(metrics.NewCollector); err != nil {
		return nil, err
	}

	if err := provideFactories(container); err != nil {
		return nil, err
	}

	// Register cache repository, nil when caching is disabled
	if err := container.Provide(func(f *factory.CacheFactory, logger *zap.Logger) (core.CacheRepository, error) {
		if !f.IsCacheEnabled() {
			logger.Info("Verdict cache disabled")
			return nil, nil
		}
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register cache janitor, nil without a cache
	if err := container.Provide(func(f *factory.CacheFactory, repo core.CacheRepository) *cache.Janitor {
		if repo == nil {
			return nil
		}
		return f.CreateJanitor(repo)
	}); err != nil {
		return nil, err
	}

	if err := provideDetection(container, func(c *metrics.Collector) core.MetricsRecorder { return c }); err != nil {
		return nil, err
	}

	// Register HTTP server
	if err := container.Provide(func(
		service *core.PhishingDetectionService,
		collector *metrics.Collector,
		cfg *config.Config,
		logger *zap.Logger,
	) *server.HTTPServer {
		return server.NewHTTPServer(service, collector.Handler(), cfg.GetServer(), logger)
	}); err != nil {
		return nil, err
	}

	// Register email filter, nil when the SMTP filter is disabled
	if err := container.Provide(func(f *factory.FilterFactory) filter.EmailFilter {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

func provideFactories(container *dig.Container) error {
	for _, ctor := range []interface{}{
		factory.NewLLMFactory,
		factory.NewCacheFactory,
		factory.NewClassifierFactory,
		factory.NewThreatIntelFactory,
		factory.NewNarrativeFactory,
		factory.NewFilterFactory,
	} {
		if err := container.Provide(ctor); err != nil {
			return err
		}
	}
	return nil
}

// provideDetection registers the detection pipeline. It expects a
// core.CacheRepository to be provided, which may be nil.
func provideDetection(container *dig.Container, recorder interface{}) error {
	// Register metrics recorder
	if err := container.Provide(recorder); err != nil {
		return err
	}

	// Register URL verdict provider
	if err := container.Provide(func(f *factory.ClassifierFactory, repo core.CacheRepository) (core.VerdictProvider, error) {
		return f.CreateVerdictProvider(repo)
	}); err != nil {
		return err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.NarrativeFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register narrative analyzer
	if err := container.Provide(func(f *factory.NarrativeFactory, llmClient core.LLMClient, tp *utils.TextProcessor) *core.NarrativeAnalyzer {
		return f.CreateNarrativeAnalyzer(llmClient, tp)
	}); err != nil {
		return err
	}

	// Register threat intelligence client
	if err := container.Provide(func(f *factory.ThreatIntelFactory) (core.ThreatIntelClient, error) {
		return f.CreateThreatIntelClient()
	}); err != nil {
		return err
	}

	// Register URL validator
	if err := container.Provide(core.NewURLValidator); err != nil {
		return err
	}

	// Register phishing detection service
	if err := container.Provide(func(
		verdictProvider core.VerdictProvider,
		narrative *core.NarrativeAnalyzer,
		threatIntel core.ThreatIntelClient,
		validator *core.URLValidator,
		recorder core.MetricsRecorder,
		cfg *config.Config,
		logger *zap.Logger,
	) *core.PhishingDetectionService {
		return core.NewPhishingDetectionService(
			verdictProvider,
			narrative,
			threatIntel,
			validator,
			recorder,
			core.ServiceOptions{BenignLabel: cfg.GetClassifier().BenignLabel},
			logger,
		)
	}); err != nil {
		return err
	}

	return nil
}
