package seed

import (
	"fmt"
	"strings"

	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/internal/domain/pipeline"
)

// Verify checks that the funnel reported by the dashboard holds exactly the
// seeded partners in each stage and that their statistics match a local
// aggregation of what was sent. Partners not carrying prefix are ignored.
func Verify(sent []model.Partner, got pipeline.Result, prefix string) error {
	want := pipeline.Aggregate(sent, pipeline.Options{})

	var seen []model.Partner
	for _, stage := range model.Stages() {
		n := 0
		for _, p := range got.Stages[stage] {
			if !strings.HasPrefix(p.Name, prefix) {
				continue
			}
			if p.PipelineStatus != stage {
				return fmt.Errorf("%w: %s listed under %s but has status %s", ErrMismatch, p.Name, stage, p.PipelineStatus)
			}
			n++
			seen = append(seen, p)
		}
		if wantN := len(want.Stages[stage]); n != wantN {
			return fmt.Errorf("%w: stage %s has %d seeded partners, want %d", ErrMismatch, stage, n, wantN)
		}
	}

	if stats := pipeline.Aggregate(seen, pipeline.Options{}).Stats; stats != want.Stats {
		return fmt.Errorf("%w: stats %+v, want %+v", ErrMismatch, stats, want.Stats)
	}
	if got.Stats.Total < want.Stats.Total {
		return fmt.Errorf("%w: dashboard total %d is below the %d seeded", ErrMismatch, got.Stats.Total, want.Stats.Total)
	}
	return nil
}
