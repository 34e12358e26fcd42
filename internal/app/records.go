package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/mission-control/internal/domain/health"
	"github.com/okian/mission-control/internal/domain/model"
	"github.com/okian/mission-control/pkg/logger"
	"github.com/okian/mission-control/pkg/metrics"
)

// ListContacts returns contacts matching params.
func (s *Service) ListContacts(ctx context.Context, params url.Values) ([]model.Contact, error) {
	return s.contacts.List(ctx, params)
}

// CreateContact stores a contact for an existing partner id.
func (s *Service) CreateContact(ctx context.Context, c model.Contact) (model.Contact, error) {
	c.PartnerID = strings.TrimSpace(c.PartnerID)
	c.Name = strings.TrimSpace(c.Name)
	switch {
	case c.PartnerID == "":
		return model.Contact{}, fmt.Errorf("%w: partner_id is required", ErrInvalidInput)
	case c.Name == "":
		return model.Contact{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	c.ID = ""
	c.CreatedAt, c.UpdatedAt = nil, nil
	return s.contacts.Create(ctx, c)
}

// UpdateContact applies patch to contact id.
func (s *Service) UpdateContact(ctx context.Context, id string, patch map[string]any) (model.Contact, error) {
	if v, ok := patch["name"]; ok {
		if n, _ := v.(string); strings.TrimSpace(n) == "" {
			return model.Contact{}, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
	}
	return s.contacts.Update(ctx, id, patch)
}

// DeleteContact removes contact id.
func (s *Service) DeleteContact(ctx context.Context, id string) error {
	return s.contacts.Delete(ctx, id)
}

// ListInteractions returns interactions matching params, newest first.
func (s *Service) ListInteractions(ctx context.Context, params url.Values) ([]model.Interaction, error) {
	if t := params.Get("type"); t != "" && !model.InteractionTypes[t] {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, t)
	}
	return s.interactions.List(ctx, params)
}

// CreateInteraction stores in and moves the partner's last contact to its
// occurred_at. Failing to update the partner does not fail the create.
func (s *Service) CreateInteraction(ctx context.Context, in model.Interaction) (model.Interaction, error) {
	in.PartnerID = strings.TrimSpace(in.PartnerID)
	in.Summary = strings.TrimSpace(in.Summary)
	switch {
	case in.PartnerID == "":
		return model.Interaction{}, fmt.Errorf("%w: partner_id is required", ErrInvalidInput)
	case in.Summary == "":
		return model.Interaction{}, fmt.Errorf("%w: summary is required", ErrInvalidInput)
	}
	if in.Type == "" {
		in.Type = model.DefaultInteractionType
	}
	if !model.InteractionTypes[in.Type] {
		return model.Interaction{}, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, in.Type)
	}
	now := s.now()
	if in.OccurredAt == nil {
		t := now.UTC()
		in.OccurredAt = &t
	}
	in.ID = ""
	in.CreatedAt = nil

	out, err := s.interactions.Create(ctx, in)
	if err != nil {
		return model.Interaction{}, err
	}

	touch := map[string]any{
		"last_contact_at": out.OccurredAt,
		"health_score":    health.Score(out.OccurredAt, now),
	}
	if _, err := s.partners.Update(ctx, out.PartnerID, touch); err != nil {
		metrics.RecordSecondaryFailure("touch_partner")
		s.logger.Warn(ctx, "failed to update partner last contact",
			logger.String("partner_id", out.PartnerID),
			logger.String("interaction_id", out.ID),
			logger.Error(err),
		)
	}
	return out, nil
}

// ListActionItems returns action items matching params.
func (s *Service) ListActionItems(ctx context.Context, params url.Values) ([]model.ActionItem, error) {
	for _, st := range strings.Split(params.Get("status"), ",") {
		if st = strings.TrimSpace(st); st != "" && !model.ActionItemStatuses[st] {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, st)
		}
	}
	return s.actionItems.List(ctx, params)
}

// CreateActionItem validates and stores an action item with defaults.
func (s *Service) CreateActionItem(ctx context.Context, a model.ActionItem) (model.ActionItem, error) {
	a.PartnerID = strings.TrimSpace(a.PartnerID)
	a.Title = strings.TrimSpace(a.Title)
	switch {
	case a.PartnerID == "":
		return model.ActionItem{}, fmt.Errorf("%w: partner_id is required", ErrInvalidInput)
	case a.Title == "":
		return model.ActionItem{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if a.Status == "" {
		a.Status = model.DefaultActionItemStatus
	}
	if a.Priority == "" {
		a.Priority = model.DefaultActionItemPriority
	}
	if err := validateItem(a.Status, a.Priority); err != nil {
		return model.ActionItem{}, err
	}
	a.CompletedAt = nil
	if a.Status == model.ActionItemStatusDone {
		t := s.now().UTC()
		a.CompletedAt = &t
	}
	a.ID = ""
	a.CreatedAt, a.UpdatedAt = nil, nil
	return s.actionItems.Create(ctx, a)
}

// UpdateActionItem applies patch to item id. Moving to done stamps
// completed_at; moving away from done clears it.
func (s *Service) UpdateActionItem(ctx context.Context, id string, patch map[string]any) (model.ActionItem, error) {
	status, hasStatus := patch["status"].(string)
	priority, _ := patch["priority"].(string)
	if _, ok := patch["status"]; ok && !hasStatus {
		return model.ActionItem{}, fmt.Errorf("%w: status must be a string", ErrInvalidInput)
	}
	if err := validateItem(status, priority); err != nil {
		return model.ActionItem{}, err
	}
	if v, ok := patch["title"]; ok {
		if t, _ := v.(string); strings.TrimSpace(t) == "" {
			return model.ActionItem{}, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
	}
	delete(patch, "completed_at")
	if hasStatus {
		if status == model.ActionItemStatusDone {
			patch["completed_at"] = s.now().UTC()
		} else {
			patch["completed_at"] = nil
		}
	}
	return s.actionItems.Update(ctx, id, patch)
}

// DeleteActionItem removes item id.
func (s *Service) DeleteActionItem(ctx context.Context, id string) error {
	return s.actionItems.Delete(ctx, id)
}

func validateItem(status, priority string) error {
	if status != "" && !model.ActionItemStatuses[status] {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if priority != "" && !model.ActionItemPriorities[priority] {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}
	return nil
}
