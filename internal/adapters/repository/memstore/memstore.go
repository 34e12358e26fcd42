// Package memstore is an in-memory Store used by tests. It interprets the
// subset of PostgREST query syntax that postgrest.Query produces.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mission-control/internal/adapters/postgrest"
)

type row = map[string]any

// Store keeps rows per table.
type Store struct {
	mu     sync.Mutex
	tables map[string][]row
	fail   map[string]error
	rpc    map[string]any
	calls  []string
}

// New returns an empty store.
func New() *Store {
	return &Store{
		tables: map[string][]row{},
		fail:   map[string]error{},
		rpc:    map[string]any{},
	}
}

// Seed inserts records as-is (ids are kept when present).
func (s *Store) Seed(table string, records any) {
	rows, err := toRows(records)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if _, ok := r["id"]; !ok {
			r["id"] = uuid.NewString()
		}
		s.tables[table] = append(s.tables[table], r)
	}
}

// Fail makes op ("select", "insert", "update", "delete", "upsert", "rpc")
// on table return err. For rpc, table is the function name.
func (s *Store) Fail(table, op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op+":"+table] = err
}

// SetRPC sets the result returned by a stored function.
func (s *Store) SetRPC(fn string, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rpc[fn] = result
}

// Rows returns a copy of a table's rows.
func (s *Store) Rows(table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.tables[table]))
	for _, r := range s.tables[table] {
		out = append(out, clone(r))
	}
	return out
}

// Calls returns "op:table" for every call made so far.
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Select implements repository.Store.
func (s *Store) Select(_ context.Context, table string, q *postgrest.Query, dst any) error {
	if err := q.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("select", table); err != nil {
		return err
	}
	vals := q.Values()
	var out []row
	for _, r := range s.tables[table] {
		if matches(r, vals) {
			out = append(out, clone(r))
		}
	}
	sortRows(out, vals.Get("order"))
	if off, _ := strconv.Atoi(vals.Get("offset")); off > 0 {
		if off >= len(out) {
			out = nil
		} else {
			out = out[off:]
		}
	}
	if lim, _ := strconv.Atoi(vals.Get("limit")); lim > 0 && lim < len(out) {
		out = out[:lim]
	}
	return decode(out, dst)
}

// Insert implements repository.Store.
func (s *Store) Insert(_ context.Context, table string, body any, dst any) error {
	rows, err := toRows(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("insert", table); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range rows {
		if id, _ := r["id"].(string); id == "" {
			r["id"] = uuid.NewString()
		}
		if _, ok := r["created_at"]; !ok {
			r["created_at"] = now
		}
		s.tables[table] = append(s.tables[table], clone(r))
	}
	return decode(rows, dst)
}

// Update implements repository.Store.
func (s *Store) Update(_ context.Context, table string, q *postgrest.Query, patch any, dst any) error {
	if err := q.Err(); err != nil {
		return err
	}
	p, err := toRows(patch)
	if err != nil || len(p) != 1 {
		return fmt.Errorf("memstore: patch must be one object")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("update", table); err != nil {
		return err
	}
	vals := q.Values()
	var out []row
	for _, r := range s.tables[table] {
		if !matches(r, vals) {
			continue
		}
		for k, v := range p[0] {
			r[k] = v
		}
		out = append(out, clone(r))
	}
	return decode(out, dst)
}

// Delete implements repository.Store.
func (s *Store) Delete(_ context.Context, table string, q *postgrest.Query) error {
	if err := q.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("delete", table); err != nil {
		return err
	}
	vals := q.Values()
	kept := s.tables[table][:0]
	for _, r := range s.tables[table] {
		if !matches(r, vals) {
			kept = append(kept, r)
		}
	}
	s.tables[table] = kept
	return nil
}

// Upsert implements repository.Store.
func (s *Store) Upsert(_ context.Context, table, onConflict string, body any, dst any) error {
	rows, err := toRows(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("upsert", table); err != nil {
		return err
	}
	for _, r := range rows {
		merged := false
		for _, existing := range s.tables[table] {
			if onConflict != "" && fmt.Sprint(existing[onConflict]) == fmt.Sprint(r[onConflict]) {
				for k, v := range r {
					existing[k] = v
				}
				merged = true
				break
			}
		}
		if !merged {
			s.tables[table] = append(s.tables[table], clone(r))
		}
	}
	return decode(rows, dst)
}

// RPC implements repository.Store.
func (s *Store) RPC(_ context.Context, fn string, _ any, dst any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("rpc", fn); err != nil {
		return err
	}
	res, ok := s.rpc[fn]
	if !ok {
		return &postgrest.StatusError{Status: 404, Code: "PGRST202", Message: "function not found"}
	}
	buf, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dst)
}

func (s *Store) enter(op, table string) error {
	s.calls = append(s.calls, op+":"+table)
	return s.fail[op+":"+table]
}

func matches(r row, vals map[string][]string) bool {
	for field, conds := range vals {
		switch field {
		case "select", "order", "limit", "offset", "on_conflict":
			continue
		}
		for _, c := range conds {
			if !match(r[field], c) {
				return false
			}
		}
	}
	return true
}

func match(v any, cond string) bool {
	op, arg, _ := strings.Cut(cond, ".")
	if op == "is" && arg == "null" {
		return v == nil
	}
	if v == nil {
		return false
	}
	s := fmt.Sprint(v)
	switch op {
	case "eq":
		return s == arg
	case "neq":
		return s != arg
	case "gte":
		return compare(v, arg) >= 0
	case "lte":
		return compare(v, arg) <= 0
	case "ilike":
		needle := strings.ToLower(strings.Trim(arg, "%"))
		return strings.Contains(strings.ToLower(s), needle)
	case "in":
		for _, item := range strings.Split(strings.Trim(arg, "()"), ",") {
			if strings.Trim(item, `"`) == s {
				return true
			}
		}
	}
	return false
}

func compare(v any, arg string) int {
	if f, ok := v.(float64); ok {
		if g, err := strconv.ParseFloat(arg, 64); err == nil {
			switch {
			case f < g:
				return -1
			case f > g:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(v), arg)
}

func sortRows(rows []row, order string) {
	if order == "" {
		return
	}
	terms := strings.Split(order, ",")
	sort.SliceStable(rows, func(i, j int) bool {
		for _, t := range terms {
			parts := strings.Split(t, ".")
			field, desc := parts[0], len(parts) > 1 && parts[1] == "desc"
			a, b := rows[i][field], rows[j][field]
			switch {
			case a == nil && b == nil:
				continue
			case a == nil:
				return false
			case b == nil:
				return true
			}
			c := compare(a, fmt.Sprint(b))
			if c == 0 {
				continue
			}
			if desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func toRows(v any) ([]row, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(buf) > 0 && buf[0] == '[' {
		var rows []row
		err = json.Unmarshal(buf, &rows)
		return rows, err
	}
	var r row
	if err := json.Unmarshal(buf, &r); err != nil {
		return nil, err
	}
	return []row{r}, nil
}

func decode(rows []row, dst any) error {
	if dst == nil {
		return nil
	}
	if rows == nil {
		rows = []row{}
	}
	buf, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dst)
}

func clone(r row) row {
	out := make(row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
