// Package repository implements the record proxy layer: typed collections
// over the external store, each parameterized by table, projection, ordering
// and an allowlisted filter set.
package repository

import (
	"context"

	"github.com/okian/mission-control/internal/adapters/postgrest"
)

// Store is the subset of the store client used by collections.
// *postgrest.Client satisfies it.
type Store interface {
	Select(ctx context.Context, table string, q *postgrest.Query, dst any) error
	Insert(ctx context.Context, table string, body any, dst any) error
	Update(ctx context.Context, table string, q *postgrest.Query, patch any, dst any) error
	Delete(ctx context.Context, table string, q *postgrest.Query) error
	Upsert(ctx context.Context, table, onConflict string, rows any, dst any) error
	RPC(ctx context.Context, fn string, args any, dst any) error
}

var _ Store = (*postgrest.Client)(nil)
