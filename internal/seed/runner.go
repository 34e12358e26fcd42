package seed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/mission-control/internal/domain/pipeline"
	"github.com/okian/mission-control/pkg/logger"
)

// Run executes a complete seed-and-verify pass.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	l := logger.Get()
	c := newClient(cfg)

	l.Info(ctx, "starting seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.Workers),
		logger.String("prefix", cfg.Prefix))

	status, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return stats, fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}

	partners := Generate(ctx, cfg, time.Now())
	stats.Generated = len(partners)

	start := time.Now()
	created := submit(ctx, c, cfg, partners, stats)
	l.Info(ctx, "partners submitted",
		logger.Int("created", stats.Created),
		logger.Int("failed", stats.Failed),
		logger.String("elapsed", elapsed(start)))
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d rejected", ErrSubmit, stats.Failed, stats.Submitted)
	}

	var got pipeline.Result
	status, err = c.do(ctx, http.MethodGet, "/api/pipeline", nil, &got)
	if err != nil {
		return stats, fmt.Errorf("fetch pipeline: %w", err)
	}
	if status != http.StatusOK {
		return stats, fmt.Errorf("fetch pipeline: status %d", status)
	}
	if err := Verify(created, got, cfg.Prefix); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	l.Info(ctx, "pipeline verified",
		logger.Int("total", got.Stats.Total),
		logger.String("conversionRate", got.Stats.ConversionRate),
		logger.Int("pipelineValue", got.Stats.PipelineValue),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}
