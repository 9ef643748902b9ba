package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-phishing-detector/internal/adapters/cache"
	"github.com/mikey/llm-phishing-detector/internal/adapters/filter"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/mikey/llm-phishing-detector/internal/di"
	"github.com/mikey/llm-phishing-detector/internal/logging"
	"github.com/mikey/llm-phishing-detector/internal/server"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

type deps struct {
	dig.In

	Config      *config.Config
	Logger      *zap.Logger
	Level       zap.AtomicLevel
	Server      *server.HTTPServer
	EmailFilter filter.EmailFilter
	Janitor     *cache.Janitor
	CacheRepo   core.CacheRepository
	LLMClient   core.LLMClient
}

// run is the main application function that gets all dependencies injected
func run(d deps) error {
	logger := d.Logger
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Follow log level changes in the config file
	d.Config.Watch(func(name string) {
		level := logging.ParseLevel(d.Config.GetString("logging.level"))
		if level != d.Level.Level() {
			d.Level.SetLevel(level)
			logger.Info("Log level changed", zap.String("file", name), zap.Stringer("level", level))
		}
	})

	if d.Janitor != nil {
		if err := d.Janitor.Start(ctx); err != nil {
			return err
		}
		defer d.Janitor.Stop()
	}

	if d.EmailFilter != nil {
		if err := d.EmailFilter.Start(); err != nil {
			logger.Error("Failed to start SMTP filter", zap.Error(err))
			return err
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- d.Server.Start()
	}()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("Shutting down...", zap.Stringer("signal", sig))
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
			runErr = err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), d.Config.GetServer().ShutdownTimeout)
	defer shutdownCancel()
	if err := d.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
	}

	if d.EmailFilter != nil {
		if err := d.EmailFilter.Stop(); err != nil {
			logger.Error("Failed to stop SMTP filter", zap.Error(err))
		}
	}

	// Close any resources that need closing
	if closer, ok := d.LLMClient.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
	if closer, ok := d.CacheRepo.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close cache", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return runErr
}
