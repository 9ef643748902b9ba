package di

import (
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-phishing-detector/internal/adapters/filter"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/mikey/llm-phishing-detector/internal/factory"
	"github.com/mikey/llm-phishing-detector/internal/logging"
)

// CLIFlags contains the command line flags shared by the CLI commands
type CLIFlags struct {
	ConfigFile     string
	Provider       string
	Classifier     string
	TrustedDomains []string
	MaxBodySize    int
	Verbose        bool
	JSONLog        bool

	// Out receives the command output
	Out io.Writer
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application.
// The CLI never caches verdicts and exports no metrics.
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		return createCLIConfig(flags, logger)
	}); err != nil {
		return nil, err
	}

	if err := provideFactories(container); err != nil {
		return nil, err
	}

	// No verdict cache for the CLI
	if err := container.Provide(func() core.CacheRepository { return nil }); err != nil {
		return nil, err
	}

	if err := provideDetection(container, func() core.MetricsRecorder { return nil }); err != nil {
		return nil, err
	}

	// Register CLI filter
	if err := container.Provide(func(f *factory.FilterFactory, flags *CLIFlags) *filter.CliFilter {
		return f.CreateCliFilter(flags.Out, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createCLIConfig loads the config file when given, then applies flag overrides
func createCLIConfig(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
	v := config.NewEmptyViper()
	if flags.ConfigFile != "" {
		cfg, err := config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded configuration from file", zap.String("file", flags.ConfigFile))
		v = cfg.GetViper()
	}

	if flags.Provider != "" {
		v.Set("llm.provider", flags.Provider)
	}
	if flags.Classifier != "" {
		v.Set("classifier.type", flags.Classifier)
	}
	if len(flags.TrustedDomains) > 0 {
		v.Set("classifier.trusted_domains", flags.TrustedDomains)
	}
	if flags.MaxBodySize > 0 {
		v.Set("llm.max_body_size", flags.MaxBodySize)
	}

	return config.NewFromViper(v), nil
}
