// Package pipeline groups partners by pipeline stage and summarizes the
// sales funnel. It performs no I/O and cannot fail.
package pipeline

import (
	"fmt"
	"math"

	"github.com/okian/mission-control/internal/domain/model"
)

// UnitPrice is the per-unit price used by the pipeline value estimate.
const UnitPrice = 50

// Options controls pre-filtering before aggregation.
type Options struct {
	// HideInactive drops inactive and lost partners before any counting.
	HideInactive bool
}

// Stats summarizes a funnel.
type Stats struct {
	Total          int    `json:"total"`
	ActivePipeline int    `json:"activePipeline"`
	Won            int    `json:"won"`
	Lost           int    `json:"lost"`
	ConversionRate string `json:"conversionRate"`
	PipelineValue  int    `json:"pipelineValue"`
}

// Result is the funnel view: every stage key is present, even when empty.
type Result struct {
	Stages map[model.Stage][]model.Partner `json:"stages"`
	Stats  Stats                           `json:"stats"`
	Order  []model.Stage                   `json:"order"`
}

// Aggregate buckets partners by stage, preserving input order within each
// bucket, and computes the funnel statistics. Partners with an unknown status
// are counted in Total but appear in no bucket.
func Aggregate(partners []model.Partner, opts Options) Result {
	order := model.Stages()
	stages := make(map[model.Stage][]model.Partner, len(order))
	for _, s := range order {
		stages[s] = []model.Partner{}
	}

	var (
		total    int
		active   int
		won      int
		lost     int
		wonUnits int
	)
	for _, p := range partners {
		status := p.PipelineStatus
		if opts.HideInactive && status.Closed() {
			continue
		}
		total++
		if !status.Valid() {
			continue
		}
		stages[status] = append(stages[status], p)
		switch {
		case status.InActiveSales():
			active++
		case status == model.StageActive:
			won++
			wonUnits += p.UnitsOrdered
		case status == model.StageLost:
			lost++
		}
	}

	var avgUnits float64
	if won > 0 {
		avgUnits = float64(wonUnits) / float64(won)
	}

	return Result{
		Stages: stages,
		Order:  order,
		Stats: Stats{
			Total:          total,
			ActivePipeline: active,
			Won:            won,
			Lost:           lost,
			ConversionRate: ConversionRate(won, total),
			PipelineValue:  int(math.Round(float64(active) * avgUnits * UnitPrice)),
		},
	}
}

// ConversionRate formats won/total as a percentage with one decimal place.
// A zero total yields "0.0%".
func ConversionRate(won, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(won)/float64(total)*100)
}

// Count returns the number of partners across all stage buckets.
func (r Result) Count() int {
	n := 0
	for _, ps := range r.Stages {
		n += len(ps)
	}
	return n
}
