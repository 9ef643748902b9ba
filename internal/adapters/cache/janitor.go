package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Janitor prunes expired verdicts from a cache repository on a cron schedule
type Janitor struct {
	repo     core.CacheRepository
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
	logger   *zap.Logger
}

// NewJanitor creates a janitor for repo. The schedule accepts standard
// five-field cron expressions and descriptors such as "@every 1h".
func NewJanitor(repo core.CacheRepository, schedule string, logger *zap.Logger) *Janitor {
	return &Janitor{
		repo:     repo,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start schedules the cleanup job. An empty schedule disables it.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.schedule == "" {
		j.logger.Info("Cache cleanup schedule not configured, skipping janitor")
		return nil
	}

	if _, err := cron.ParseStandard(j.schedule); err != nil {
		return fmt.Errorf("invalid cache cleanup schedule %q: %w", j.schedule, err)
	}

	if _, err := j.cron.AddFunc(j.schedule, func() {
		j.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule cache cleanup: %w", err)
	}

	j.cron.Start()
	j.running = true

	j.logger.Info("Cache janitor started", zap.String("schedule", j.schedule))
	return nil
}

// RunOnce removes expired entries immediately
func (j *Janitor) RunOnce(ctx context.Context) {
	if err := j.repo.Cleanup(ctx); err != nil {
		j.logger.Error("Failed to clean up cache", zap.Error(err))
	}
}

// Stop stops the scheduler and waits for a running cleanup to finish
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}
	<-j.cron.Stop().Done()
	j.running = false
	j.logger.Info("Cache janitor stopped")
}

// IsRunning reports whether the cleanup job is scheduled
func (j *Janitor) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
