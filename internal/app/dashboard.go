package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/okian/mission-control/internal/adapters/knowledge"
	"github.com/okian/mission-control/internal/adapters/payments"
	"github.com/okian/mission-control/internal/adapters/postgrest"
	"github.com/okian/mission-control/internal/adapters/repository"
	"github.com/okian/mission-control/internal/adapters/workspace"
	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/internal/domain/pipeline"
	"github.com/okian/mission-control/pkg/logger"
	"github.com/okian/mission-control/pkg/metrics"
)

// RevenueReport combines the recurring revenue summary with monthly history.
type RevenueReport struct {
	payments.Summary
	RevenueByMonth []payments.MonthRevenue `json:"revenue_by_month"`
}

// Pipeline reads every partner ordered by stage and most recent contact,
// recomputes health and aggregates the funnel.
func (s *Service) Pipeline(ctx context.Context, hideInactive bool) (pipeline.Result, error) {
	ps, err := s.partners.Query(ctx, func(q *postgrest.Query) {
		q.Order("pipeline_status", true).Order("last_contact_at", false)
	})
	if err != nil {
		return pipeline.Aggregate(nil, pipeline.Options{}), err
	}
	for _, p := range ps {
		metrics.ObserveHealthScore(p.HealthScore)
	}
	res := pipeline.Aggregate(ps, pipeline.Options{HideInactive: hideInactive})
	metrics.UpdatePipeline(res.Stats.Total, res.Stats.PipelineValue)
	return res, nil
}

// Revenue returns the payments summary and monthly history.
func (s *Service) Revenue(ctx context.Context) (RevenueReport, error) {
	report := RevenueReport{RevenueByMonth: []payments.MonthRevenue{}}
	if !s.revenue.Configured() {
		return report, fmt.Errorf("%w: payments", ErrNotConfigured)
	}
	sum, err := s.revenue.Summary(ctx)
	if err != nil {
		return report, err
	}
	months, err := s.revenue.MonthlyRevenue(ctx, s.revenueMonths)
	if err != nil {
		return report, err
	}
	report.Summary, report.RevenueByMonth = sum, months
	return report, nil
}

// RevenueSnapshots lists stored daily snapshots, filtered by from/to dates.
func (s *Service) RevenueSnapshots(ctx context.Context, params url.Values) ([]model.RevenueSnapshot, error) {
	return s.snapshots.List(ctx, params)
}

// SaveSnapshot records today's payments summary, replacing any row already
// stored for the date.
func (s *Service) SaveSnapshot(ctx context.Context) (model.RevenueSnapshot, error) {
	if !s.revenue.Configured() {
		return model.RevenueSnapshot{}, fmt.Errorf("%w: payments", ErrNotConfigured)
	}
	sum, err := s.revenue.Summary(ctx)
	if err != nil {
		return model.RevenueSnapshot{}, err
	}
	snap := model.RevenueSnapshot{
		SnapshotDate:        s.now().UTC().Format("2006-01-02"),
		MRR:                 sum.MRR,
		ActiveSubscriptions: sum.ActiveSubscriptions,
		Customers:           sum.Customers,
	}
	var rows []model.RevenueSnapshot
	if err := s.store.Upsert(ctx, repository.TableRevenueSnapshots, "snapshot_date", []model.RevenueSnapshot{snap}, &rows); err != nil {
		return model.RevenueSnapshot{}, fmt.Errorf("upsert snapshot: %w", err)
	}
	if len(rows) > 0 {
		snap = rows[0]
	}
	s.logger.Info(ctx, "revenue snapshot saved",
		logger.String("date", snap.SnapshotDate), logger.Float64("mrr", snap.MRR))
	return snap, nil
}

// SearchKnowledge answers a free-text question.
func (s *Service) SearchKnowledge(ctx context.Context, query string) (knowledge.Result, error) {
	res, err := s.knowledge.Search(ctx, query)
	if errors.Is(err, knowledge.ErrEmptyQuery) {
		return res, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return res, err
}

// WorkspaceFiles lists the allowlisted workspace files.
func (s *Service) WorkspaceFiles() ([]workspace.FileInfo, error) {
	if s.workspace == nil {
		return []workspace.FileInfo{}, fmt.Errorf("%w: workspace", ErrNotConfigured)
	}
	return s.workspace.List(), nil
}

// ReadWorkspaceFile returns the parsed content of name.
func (s *Service) ReadWorkspaceFile(name string) (workspace.Document, error) {
	if s.workspace == nil {
		return workspace.Document{}, fmt.Errorf("%w: workspace", ErrNotConfigured)
	}
	return s.workspace.Read(name)
}

// AppendWorkspaceFile appends e to name.
func (s *Service) AppendWorkspaceFile(ctx context.Context, name string, e workspace.Entry) error {
	if s.workspace == nil {
		return fmt.Errorf("%w: workspace", ErrNotConfigured)
	}
	if err := s.workspace.Append(name, e); err != nil {
		return err
	}
	s.logger.Info(ctx, "workspace file appended", logger.String("name", name))
	return nil
}
