// Package model contains domain models passed between layers.
// JSON tags mirror the column names of the external store.
package model

import "time"

// Default values applied to new records when the caller omits them.
const (
	DefaultPartnerType         = "reseller"
	DefaultInteractionType     = "note"
	DefaultActionItemStatus    = "open"
	DefaultActionItemPriority  = "medium"
	ActionItemStatusDone       = "done"
	ActionItemStatusInProgress = "in_progress"
)

// Partner is a business-relationship record tracked through the pipeline.
type Partner struct {
	ID             string     `json:"id,omitempty"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Website        string     `json:"website,omitempty"`
	Address        string     `json:"address,omitempty"`
	City           string     `json:"city,omitempty"`
	State          string     `json:"state,omitempty"`
	Country        string     `json:"country,omitempty"`
	PartnerType    string     `json:"partner_type,omitempty"`
	PipelineStatus Stage      `json:"pipeline_status,omitempty"`
	LastContactAt  *time.Time `json:"last_contact_at"`
	UnitsOrdered   int        `json:"units_ordered"`
	MRR            float64    `json:"mrr"`
	Notes          string     `json:"notes,omitempty"`
	AssignedTo     string     `json:"assigned_to,omitempty"`
	HealthScore    int        `json:"health_score"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Contact is a person attached to a partner.
type Contact struct {
	ID        string     `json:"id,omitempty"`
	PartnerID string     `json:"partner_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Role      string     `json:"role,omitempty"`
	IsPrimary bool       `json:"is_primary"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Interaction is a logged touchpoint with a partner.
type Interaction struct {
	ID         string     `json:"id,omitempty"`
	PartnerID  string     `json:"partner_id"`
	ContactID  *string    `json:"contact_id,omitempty"`
	Type       string     `json:"type"`
	Summary    string     `json:"summary"`
	OccurredAt *time.Time `json:"occurred_at"`
	CreatedBy  string     `json:"created_by,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// ActionItem is a follow-up task attached to a partner.
type ActionItem struct {
	ID          string     `json:"id,omitempty"`
	PartnerID   string     `json:"partner_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *string    `json:"due_date,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// RevenueSnapshot is a daily payments rollup pushed by the snapshot job.
type RevenueSnapshot struct {
	SnapshotDate        string     `json:"snapshot_date"`
	MRR                 float64    `json:"mrr"`
	ActiveSubscriptions int        `json:"active_subscriptions"`
	Customers           int        `json:"customers"`
	CreatedAt           *time.Time `json:"created_at,omitempty"`
}

// KnowledgeEntry is a free-text document searchable from the dashboard.
type KnowledgeEntry struct {
	ID         string  `json:"id,omitempty"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Source     string  `json:"source,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}
