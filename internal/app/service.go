// Package service composes the record collections, domain calculations and
// optional providers into the operations served by the HTTP API.
package service

import (
	"time"

	"github.com/okian/mission-control/internal/adapters/knowledge"
	"github.com/okian/mission-control/internal/adapters/payments"
	"github.com/okian/mission-control/internal/adapters/repository"
	"github.com/okian/mission-control/internal/adapters/workspace"
	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/logger"
)

const defaultRevenueMonths = 12

// Service implements the dashboard operations.
type Service struct {
	store repository.Store

	partners     *repository.Collection[model.Partner]
	contacts     *repository.Collection[model.Contact]
	interactions *repository.Collection[model.Interaction]
	actionItems  *repository.Collection[model.ActionItem]
	snapshots    *repository.Collection[model.RevenueSnapshot]

	revenue       *payments.Revenue
	knowledge     *knowledge.Searcher
	workspace     *workspace.Workspace
	revenueMonths int

	defaultLimit int
	maxLimit     int

	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClock sets the time source used for health scores and defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithListLimits sets the default and maximum page size of list operations.
func WithListLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		s.defaultLimit, s.maxLimit = defaultLimit, maxLimit
	}
}

// WithRevenue attaches the payments rollup.
func WithRevenue(r *payments.Revenue) Option {
	return func(s *Service) { s.revenue = r }
}

// WithRevenueMonths sets how many months the revenue history covers.
func WithRevenueMonths(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.revenueMonths = n
		}
	}
}

// WithKnowledge attaches the knowledge searcher.
func WithKnowledge(k *knowledge.Searcher) Option {
	return func(s *Service) { s.knowledge = k }
}

// WithWorkspace attaches the workspace files.
func WithWorkspace(w *workspace.Workspace) Option {
	return func(s *Service) { s.workspace = w }
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:         store,
		revenueMonths: defaultRevenueMonths,
		now:           time.Now,
		logger:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var limits []repository.Option
	if s.defaultLimit > 0 {
		limits = append(limits, repository.WithLimits(s.defaultLimit, s.maxLimit))
	}
	s.partners = repository.Partners(store, s.clock, limits...)
	s.contacts = repository.Contacts(store, limits...)
	s.interactions = repository.Interactions(store, limits...)
	s.actionItems = repository.ActionItems(store, limits...)
	s.snapshots = repository.RevenueSnapshots(store, limits...)
	if s.knowledge == nil {
		s.knowledge = knowledge.New(store, knowledge.WithLogger(s.logger))
	}
	return s
}

func (s *Service) clock() time.Time { return s.now() }
