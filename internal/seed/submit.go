package seed

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/logger"
)

// submit posts partners with a pool of cfg.Workers goroutines and returns
// the partners the dashboard accepted, in no particular order.
func submit(ctx context.Context, c *client, cfg *Config, partners []model.Partner, stats *Stats) []model.Partner {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	var (
		submitted int64
		failed    int64
		mu        sync.Mutex
		created   = make([]model.Partner, 0, len(partners))
		wg        sync.WaitGroup
	)
	work := make(chan model.Partner, workers*2)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range work {
				atomic.AddInt64(&submitted, 1)
				var out model.Partner
				status, err := c.do(ctx, http.MethodPost, "/api/partners", p, &out)
				if err != nil || status != http.StatusCreated {
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						logger.Get().Warn(ctx, "partner rejected",
							logger.String("name", p.Name), logger.Int("status", status), logger.Error(err))
					}
					continue
				}
				mu.Lock()
				created = append(created, out)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(work)
		for _, p := range partners {
			select {
			case <-ctx.Done():
				return
			case work <- p:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Failed = int(atomic.LoadInt64(&failed))
	stats.Created = len(created)
	return created
}
