package repository

import (
	"time"

	"github.com/okian/mission-control/internal/domain/health"
	"github.com/okian/mission-control/internal/domain/model"
)

// Table names in the external store.
const (
	TablePartners         = "partners"
	TableContacts         = "contacts"
	TableInteractions     = "interactions"
	TableActionItems      = "action_items"
	TableRevenueSnapshots = "revenue_snapshots"
	TableKnowledge        = "knowledge"
)

// Partners builds the partners collection. now supplies the read time used
// to recompute health on every returned record.
func Partners(store Store, now func() time.Time, opts ...Option) *Collection[model.Partner] {
	return NewCollection(store, Spec[model.Partner]{
		Table: TablePartners,
		Order: []OrderSpec{{Field: "name", Asc: true}},
		Filters: []FilterSpec{
			{Param: "status", Field: "pipeline_status", Op: OpEq},
			{Param: "type", Field: "partner_type", Op: OpEq},
			{Param: "assigned_to", Field: "assigned_to", Op: OpEq},
			{Param: "search", Field: "name", Op: OpILike},
		},
		Patchable: []string{
			"name", "email", "phone", "website", "address", "city", "state",
			"country", "partner_type", "pipeline_status", "last_contact_at",
			"units_ordered", "mrr", "notes", "assigned_to", "health_score",
		},
		AfterRead: func(p *model.Partner) { health.Apply(p, now()) },
	}, opts...)
}

// Contacts builds the contacts collection.
func Contacts(store Store, opts ...Option) *Collection[model.Contact] {
	return NewCollection(store, Spec[model.Contact]{
		Table: TableContacts,
		Order: []OrderSpec{{Field: "is_primary", Asc: false}, {Field: "name", Asc: true}},
		Filters: []FilterSpec{
			{Param: "partner_id", Field: "partner_id", Op: OpEq},
			{Param: "search", Field: "name", Op: OpILike},
		},
		Patchable: []string{"name", "email", "phone", "role", "is_primary", "notes"},
	}, opts...)
}

// Interactions builds the interactions collection, newest first.
func Interactions(store Store, opts ...Option) *Collection[model.Interaction] {
	return NewCollection(store, Spec[model.Interaction]{
		Table: TableInteractions,
		Order: []OrderSpec{{Field: "occurred_at", Asc: false}},
		Filters: []FilterSpec{
			{Param: "partner_id", Field: "partner_id", Op: OpEq},
			{Param: "type", Field: "type", Op: OpEq},
			{Param: "from", Field: "occurred_at", Op: OpGte},
			{Param: "to", Field: "occurred_at", Op: OpLte},
		},
		Patchable: []string{"type", "summary", "occurred_at", "contact_id"},
	}, opts...)
}

// ActionItems builds the action items collection.
func ActionItems(store Store, opts ...Option) *Collection[model.ActionItem] {
	return NewCollection(store, Spec[model.ActionItem]{
		Table: TableActionItems,
		Order: []OrderSpec{{Field: "due_date", Asc: true}, {Field: "created_at", Asc: false}},
		Filters: []FilterSpec{
			{Param: "partner_id", Field: "partner_id", Op: OpEq},
			{Param: "status", Field: "status", Op: OpIn},
			{Param: "assigned_to", Field: "assigned_to", Op: OpEq},
		},
		Patchable: []string{"title", "status", "priority", "due_date", "assigned_to", "completed_at"},
	}, opts...)
}

// RevenueSnapshots builds the revenue snapshots collection, oldest first.
func RevenueSnapshots(store Store, opts ...Option) *Collection[model.RevenueSnapshot] {
	return NewCollection(store, Spec[model.RevenueSnapshot]{
		Table: TableRevenueSnapshots,
		Order: []OrderSpec{{Field: "snapshot_date", Asc: true}},
		Filters: []FilterSpec{
			{Param: "from", Field: "snapshot_date", Op: OpGte},
			{Param: "to", Field: "snapshot_date", Op: OpLte},
		},
	}, opts...)
}

// Knowledge builds the knowledge collection. Embeddings are never projected.
func Knowledge(store Store, opts ...Option) *Collection[model.KnowledgeEntry] {
	return NewCollection(store, Spec[model.KnowledgeEntry]{
		Table:      TableKnowledge,
		Projection: []string{"id", "title", "content", "source"},
		Order:      []OrderSpec{{Field: "title", Asc: true}},
		Filters: []FilterSpec{
			{Param: "search", Field: "content", Op: OpILike},
			{Param: "source", Field: "source", Op: OpEq},
		},
	}, opts...)
}
