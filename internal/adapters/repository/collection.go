package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/mission-control/internal/adapters/postgrest"
)

// FilterOp selects how a query parameter becomes a store filter.
type FilterOp int

// Supported filter operators.
const (
	OpEq FilterOp = iota
	OpILike
	OpGte
	OpLte
	OpIn // comma separated list
)

// FilterSpec maps a request parameter onto a column filter.
type FilterSpec struct {
	Param string
	Field string
	Op    FilterOp
}

// OrderSpec is one ordering term.
type OrderSpec struct {
	Field string
	Asc   bool
}

// Spec describes one external collection.
type Spec[T any] struct {
	Table      string
	Projection []string
	Order      []OrderSpec
	Filters    []FilterSpec
	// Patchable lists the columns Update accepts; other keys are dropped.
	Patchable []string
	// AfterRead runs on every record returned by the store.
	AfterRead func(*T)
}

// Collection is a typed proxy over one store table.
type Collection[T any] struct {
	spec      Spec[T]
	store     Store
	opts      options
	patchable map[string]bool
}

// NewCollection creates a collection proxy.
func NewCollection[T any](store Store, spec Spec[T], opts ...Option) *Collection[T] {
	o := options{defaultLimit: defaultListLimit, maxLimit: maxListLimit}
	for _, opt := range opts {
		opt(&o)
	}
	patchable := make(map[string]bool, len(spec.Patchable))
	for _, f := range spec.Patchable {
		patchable[f] = true
	}
	return &Collection[T]{spec: spec, store: store, opts: o, patchable: patchable}
}

// Table returns the collection's table name.
func (c *Collection[T]) Table() string { return c.spec.Table }

// List returns records matching the allowlisted filters in params. Unknown
// parameters are ignored. limit defaults to the configured default and is
// clamped to the maximum; offset defaults to 0.
func (c *Collection[T]) List(ctx context.Context, params url.Values) ([]T, error) {
	q, err := c.listQuery(params)
	if err != nil {
		return nil, err
	}
	return c.selectRows(ctx, q)
}

// Query runs a caller-built query with the collection's projection and hooks.
// Ordering and limits from the collection Spec are not applied.
func (c *Collection[T]) Query(ctx context.Context, build func(q *postgrest.Query)) ([]T, error) {
	q := postgrest.NewQuery().Select(c.projection()...)
	build(q)
	return c.selectRows(ctx, q)
}

// Get returns the record with the given id or ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if strings.TrimSpace(id) == "" {
		return zero, ErrMissingID
	}
	q := postgrest.NewQuery().Select(c.projection()...).Eq("id", id).Limit(1)
	rows, err := c.selectRows(ctx, q)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, c.spec.Table, id)
	}
	return rows[0], nil
}

// Create inserts rec and returns the stored representation.
func (c *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	var rows []T
	if err := c.store.Insert(ctx, c.spec.Table, rec, &rows); err != nil {
		return zero, fmt.Errorf("create %s: %w", c.spec.Table, err)
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("create %s: store returned no representation", c.spec.Table)
	}
	c.afterRead(rows)
	return rows[0], nil
}

// Update applies the allowlisted keys of patch to the record with id.
func (c *Collection[T]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	var zero T
	if strings.TrimSpace(id) == "" {
		return zero, ErrMissingID
	}
	clean := c.FilterPatch(patch)
	if len(clean) == 0 {
		return zero, ErrEmptyPatch
	}
	var rows []T
	q := postgrest.NewQuery().Eq("id", id)
	if err := c.store.Update(ctx, c.spec.Table, q, clean, &rows); err != nil {
		return zero, fmt.Errorf("update %s: %w", c.spec.Table, err)
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, c.spec.Table, id)
	}
	c.afterRead(rows)
	return rows[0], nil
}

// Delete removes the record with id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	if err := c.store.Delete(ctx, c.spec.Table, postgrest.NewQuery().Eq("id", id)); err != nil {
		return fmt.Errorf("delete %s: %w", c.spec.Table, err)
	}
	return nil
}

// FilterPatch drops keys that are not patchable.
func (c *Collection[T]) FilterPatch(patch map[string]any) map[string]any {
	clean := make(map[string]any, len(patch))
	for k, v := range patch {
		if c.patchable[k] {
			clean[k] = v
		}
	}
	return clean
}

func (c *Collection[T]) selectRows(ctx context.Context, q *postgrest.Query) ([]T, error) {
	rows := []T{}
	if err := c.store.Select(ctx, c.spec.Table, q, &rows); err != nil {
		return nil, fmt.Errorf("list %s: %w", c.spec.Table, err)
	}
	if rows == nil {
		rows = []T{}
	}
	c.afterRead(rows)
	return rows, nil
}

func (c *Collection[T]) afterRead(rows []T) {
	if c.spec.AfterRead == nil {
		return
	}
	for i := range rows {
		c.spec.AfterRead(&rows[i])
	}
}

func (c *Collection[T]) projection() []string {
	if len(c.spec.Projection) == 0 {
		return []string{"*"}
	}
	return c.spec.Projection
}

func (c *Collection[T]) listQuery(params url.Values) (*postgrest.Query, error) {
	limit, err := intParam(params, "limit", c.opts.defaultLimit)
	if err != nil {
		return nil, err
	}
	if limit > c.opts.maxLimit {
		limit = c.opts.maxLimit
	}
	offset, err := intParam(params, "offset", 0)
	if err != nil {
		return nil, err
	}

	q := postgrest.NewQuery().Select(c.projection()...)
	for _, f := range c.spec.Filters {
		v := strings.TrimSpace(params.Get(f.Param))
		if v == "" {
			continue
		}
		switch f.Op {
		case OpEq:
			q.Eq(f.Field, v)
		case OpILike:
			q.ILike(f.Field, v)
		case OpGte:
			q.Gte(f.Field, v)
		case OpLte:
			q.Lte(f.Field, v)
		case OpIn:
			q.In(f.Field, splitCSV(v)...)
		}
	}
	for _, o := range c.spec.Order {
		q.Order(o.Field, o.Asc)
	}
	q.Limit(limit).Offset(offset)
	if err := q.Err(); err != nil {
		return nil, err
	}
	return q, nil
}

func intParam(params url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(params.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || (name == "limit" && n == 0) {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, name, raw)
	}
	return n, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
