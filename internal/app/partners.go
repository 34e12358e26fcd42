package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/okian/mission-control/internal/domain/health"
	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/logger"
	"github.com/okian/mission-control/pkg/metrics"
)

// PartnerDetail is a partner with its related records. A section that could
// not be read is empty and named in Errors.
type PartnerDetail struct {
	Partner      model.Partner       `json:"partner"`
	Contacts     []model.Contact     `json:"contacts"`
	Interactions []model.Interaction `json:"interactions"`
	ActionItems  []model.ActionItem  `json:"action_items"`
	Errors       map[string]string   `json:"errors,omitempty"`
}

// ListPartners returns partners matching params with fresh health scores.
func (s *Service) ListPartners(ctx context.Context, params url.Values) ([]model.Partner, error) {
	if st := params.Get("status"); st != "" && !model.Stage(st).Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, st)
	}
	ps, err := s.partners.List(ctx, params)
	if err != nil {
		return nil, err
	}
	for _, p := range ps {
		metrics.ObserveHealthScore(p.HealthScore)
	}
	return ps, nil
}

// GetPartner returns one partner.
func (s *Service) GetPartner(ctx context.Context, id string) (model.Partner, error) {
	return s.partners.Get(ctx, id)
}

// CreatePartner validates p, applies defaults and stores it.
func (s *Service) CreatePartner(ctx context.Context, p model.Partner) (model.Partner, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return model.Partner{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.PipelineStatus == "" {
		p.PipelineStatus = model.StageProspect
	}
	if !p.PipelineStatus.Valid() {
		return model.Partner{}, fmt.Errorf("%w: unknown pipeline_status %q", ErrInvalidInput, p.PipelineStatus)
	}
	if p.PartnerType == "" {
		p.PartnerType = model.DefaultPartnerType
	}
	if p.UnitsOrdered < 0 {
		return model.Partner{}, fmt.Errorf("%w: units_ordered must not be negative", ErrInvalidInput)
	}
	p.ID = ""
	p.CreatedAt, p.UpdatedAt = nil, nil
	health.Apply(&p, s.now())

	out, err := s.partners.Create(ctx, p)
	if err != nil {
		return model.Partner{}, err
	}
	s.logger.Info(ctx, "partner created", logger.String("id", out.ID), logger.String("status", string(out.PipelineStatus)))
	return out, nil
}

// UpdatePartner applies patch to partner id. A changed last_contact_at also
// stores the matching health score.
func (s *Service) UpdatePartner(ctx context.Context, id string, patch map[string]any) (model.Partner, error) {
	if v, ok := patch["pipeline_status"]; ok {
		st, _ := v.(string)
		if !model.Stage(st).Valid() {
			return model.Partner{}, fmt.Errorf("%w: unknown pipeline_status %v", ErrInvalidInput, v)
		}
	}
	if v, ok := patch["name"]; ok {
		if n, _ := v.(string); strings.TrimSpace(n) == "" {
			return model.Partner{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
	}
	delete(patch, "health_score")
	if v, ok := patch["last_contact_at"]; ok {
		t, err := optionalTime(v)
		if err != nil {
			return model.Partner{}, fmt.Errorf("%w: last_contact_at: %v", ErrInvalidInput, err)
		}
		patch["health_score"] = health.Score(t, s.now())
	}
	return s.partners.Update(ctx, id, patch)
}

// DeletePartner removes partner id.
func (s *Service) DeletePartner(ctx context.Context, id string) error {
	return s.partners.Delete(ctx, id)
}

// PartnerDetail reads the partner, then its contacts, interactions and
// action items concurrently.
func (s *Service) PartnerDetail(ctx context.Context, id string) (PartnerDetail, error) {
	p, err := s.partners.Get(ctx, id)
	if err != nil {
		return PartnerDetail{}, err
	}
	d := PartnerDetail{
		Partner:      p,
		Contacts:     []model.Contact{},
		Interactions: []model.Interaction{},
		ActionItems:  []model.ActionItem{},
	}
	byPartner := url.Values{"partner_id": {p.ID}}

	var (
		wg                            sync.WaitGroup
		contactErr, interErr, itemErr error
		contacts                      []model.Contact
		interactions                  []model.Interaction
		items                         []model.ActionItem
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		contacts, contactErr = s.contacts.List(ctx, byPartner)
	}()
	go func() {
		defer wg.Done()
		interactions, interErr = s.interactions.List(ctx, byPartner)
	}()
	go func() {
		defer wg.Done()
		items, itemErr = s.actionItems.List(ctx, byPartner)
	}()
	wg.Wait()

	sections := []struct {
		name string
		err  error
	}{{"contacts", contactErr}, {"interactions", interErr}, {"action_items", itemErr}}
	for _, sec := range sections {
		if sec.err == nil {
			continue
		}
		if d.Errors == nil {
			d.Errors = map[string]string{}
		}
		d.Errors[sec.name] = sec.err.Error()
		metrics.RecordSecondaryFailure("partner_detail_" + sec.name)
		s.logger.Warn(ctx, "partner detail section failed",
			logger.String("partner_id", p.ID), logger.String("section", sec.name), logger.Error(sec.err))
	}
	if contactErr == nil {
		d.Contacts = contacts
	}
	if interErr == nil {
		d.Interactions = interactions
	}
	if itemErr == nil {
		d.ActionItems = items
	}
	return d, nil
}

// optionalTime accepts nil or an RFC3339 string.
func optionalTime(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	case time.Time:
		return &t, nil
	case *time.Time:
		return t, nil
	}
	return nil, fmt.Errorf("unsupported value %v", v)
}
