package seed

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/logger"
)

// Generator ranges.
const (
	maxContactAgeDays = 120
	neverContactedPct = 10
	maxWonUnits       = 40
	maxOpenUnits      = 5
)

var partnerTypes = []string{"reseller", "clinic", "distributor", "referral"}

var cities = []string{"Austin", "Denver", "Portland", "Raleigh", "Tucson", "Omaha"}

// Generate builds n partners spread over every stage with random
// last-contact ages. The same seed always yields the same partners.
func Generate(ctx context.Context, cfg *Config, now time.Time) []model.Partner {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(now.UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	stages := model.Stages()

	ps := make([]model.Partner, cfg.Count)
	for i := range ps {
		stage := stages[rng.IntN(len(stages))]
		p := model.Partner{
			Name:           cfg.Prefix + strconv.Itoa(i+1),
			PartnerType:    partnerTypes[rng.IntN(len(partnerTypes))],
			PipelineStatus: stage,
			City:           cities[rng.IntN(len(cities))],
		}
		if rng.IntN(100) >= neverContactedPct {
			age := time.Duration(rng.Float64() * maxContactAgeDays * float64(24*time.Hour))
			t := now.Add(-age).UTC().Truncate(time.Second)
			p.LastContactAt = &t
		}
		switch {
		case stage == model.StageActive:
			p.UnitsOrdered = 1 + rng.IntN(maxWonUnits)
		case stage.InActiveSales():
			p.UnitsOrdered = rng.IntN(maxOpenUnits)
		}
		ps[i] = p
	}

	logger.Get().Info(ctx, "generated partners", logger.Int("count", len(ps)), logger.Any("seed", seed))
	return ps
}
