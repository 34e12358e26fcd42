// Package health computes the derived partner health score from the recency
// of the last contact. It is the single source of the scoring rule; every
// partner serialized by the service passes through Apply.
package health

import (
	"time"

	"github.com/okian/mission-control/internal/domain/model"
)

// Score values.
const (
	ScoreHealthy = 100
	ScoreCooling = 70
	ScoreAtRisk  = 40
	ScoreDormant = 10
	millisPerDay = 86_400_000
	healthyDays  = 7
	coolingDays  = 14
	atRiskDays   = 30
)

// Score maps a last-contact timestamp to a health score in {10, 40, 70, 100}.
// Age is the exact millisecond difference divided by one day; comparisons are
// strict so an age of exactly 7 days scores 70.
func Score(lastContactAt *time.Time, now time.Time) int {
	if lastContactAt == nil {
		return ScoreDormant
	}
	age := AgeDays(*lastContactAt, now)
	switch {
	case age < healthyDays:
		return ScoreHealthy
	case age < coolingDays:
		return ScoreCooling
	case age < atRiskDays:
		return ScoreAtRisk
	default:
		return ScoreDormant
	}
}

// AgeDays returns now - t in fractional days at millisecond precision.
func AgeDays(t, now time.Time) float64 {
	return float64(now.Sub(t).Milliseconds()) / millisPerDay
}

// Apply overwrites p.HealthScore with a freshly computed value.
func Apply(p *model.Partner, now time.Time) {
	if p == nil {
		return
	}
	p.HealthScore = Score(p.LastContactAt, now)
}

// ApplyAll recomputes the health score of every partner in place.
func ApplyAll(ps []model.Partner, now time.Time) {
	for i := range ps {
		Apply(&ps[i], now)
	}
}

// Label names a score bucket for display.
func Label(score int) string {
	switch {
	case score >= ScoreHealthy:
		return "healthy"
	case score >= ScoreCooling:
		return "cooling"
	case score >= ScoreAtRisk:
		return "at_risk"
	default:
		return "dormant"
	}
}
