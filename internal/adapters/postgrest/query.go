package postgrest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	libinjection "github.com/corazawaf/libinjection-go"
	"github.com/google/uuid"
)

// Query accumulates PostgREST query-string parameters. Builder methods record
// the first validation error, which is returned by Err and by every client
// operation that receives the query.
type Query struct {
	params url.Values
	order  []string
	err    error
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{params: url.Values{}}
}

// Select sets the column projection.
func (q *Query) Select(fields ...string) *Query {
	for _, f := range fields {
		if f != "*" && !validField(f) {
			q.setErr(fmt.Errorf("%w: %q", ErrInvalidField, f))
		}
	}
	if len(fields) > 0 {
		q.params.Set("select", strings.Join(fields, ","))
	}
	return q
}

// Eq adds field=eq.value.
func (q *Query) Eq(field, value string) *Query { return q.filter(field, "eq", value) }

// Neq adds field=neq.value.
func (q *Query) Neq(field, value string) *Query { return q.filter(field, "neq", value) }

// Gte adds field=gte.value.
func (q *Query) Gte(field, value string) *Query { return q.filter(field, "gte", value) }

// Lte adds field=lte.value.
func (q *Query) Lte(field, value string) *Query { return q.filter(field, "lte", value) }

// ILike adds a case-insensitive substring match: field=ilike.%value%.
func (q *Query) ILike(field, value string) *Query {
	if !q.screen(field, value) {
		return q
	}
	q.params.Add(field, "ilike.%"+value+"%")
	return q
}

// In adds field=in.(v1,v2,...). Values containing reserved characters are quoted.
func (q *Query) In(field string, values ...string) *Query {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		if !q.screen(field, v) {
			return q
		}
		if strings.ContainsAny(v, ",()\"") {
			v = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
		}
		quoted = append(quoted, v)
	}
	q.params.Add(field, "in.("+strings.Join(quoted, ",")+")")
	return q
}

// IsNull adds field=is.null.
func (q *Query) IsNull(field string) *Query {
	if !validField(field) {
		q.setErr(fmt.Errorf("%w: %q", ErrInvalidField, field))
		return q
	}
	q.params.Add(field, "is.null")
	return q
}

// Order appends an ordering term; nulls sort last in both directions.
func (q *Query) Order(field string, asc bool) *Query {
	if !validField(field) {
		q.setErr(fmt.Errorf("%w: %q", ErrInvalidField, field))
		return q
	}
	dir := "desc"
	if asc {
		dir = "asc"
	}
	q.order = append(q.order, field+"."+dir+".nullslast")
	return q
}

// Limit caps the number of returned rows. Non-positive values are ignored.
func (q *Query) Limit(n int) *Query {
	if n > 0 {
		q.params.Set("limit", strconv.Itoa(n))
	}
	return q
}

// Offset skips rows. Non-positive values are ignored.
func (q *Query) Offset(n int) *Query {
	if n > 0 {
		q.params.Set("offset", strconv.Itoa(n))
	}
	return q
}

// Err returns the first builder error, if any.
func (q *Query) Err() error {
	if q == nil {
		return nil
	}
	return q.err
}

// HasFilters reports whether any row filter (not projection/order/paging) is set.
func (q *Query) HasFilters() bool {
	if q == nil {
		return false
	}
	for k := range q.params {
		switch k {
		case "select", "limit", "offset", "order", "on_conflict":
		default:
			return true
		}
	}
	return false
}

// Values returns the encoded parameters.
func (q *Query) Values() url.Values {
	out := url.Values{}
	if q == nil {
		return out
	}
	for k, vs := range q.params {
		out[k] = append([]string(nil), vs...)
	}
	if len(q.order) > 0 {
		out.Set("order", strings.Join(q.order, ","))
	}
	return out
}

func (q *Query) filter(field, op, value string) *Query {
	if !q.screen(field, value) {
		return q
	}
	q.params.Add(field, op+"."+value)
	return q
}

// screen validates a field name and rejects values that look like SQL
// injection payloads.
func (q *Query) screen(field, value string) bool {
	if !validField(field) {
		q.setErr(fmt.Errorf("%w: %q", ErrInvalidField, field))
		return false
	}
	if knownSafe(value) {
		return true
	}
	if isSQLi, fp := libinjection.IsSQLi(value); isSQLi {
		q.setErr(fmt.Errorf("%w: %s (fingerprint %s)", ErrUnsafeFilter, field, fp))
		return false
	}
	return true
}

// knownSafe reports values with a fixed shape (uuids, numbers, dates and
// timestamps) that skip the libinjection check.
func knownSafe(v string) bool {
	if _, err := uuid.Parse(v); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return true
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func (q *Query) setErr(err error) {
	if q.err == nil {
		q.err = err
	}
}

// validField accepts lower-case identifiers, optionally dotted for embedded
// resources (e.g. "partners.name").
func validField(f string) bool {
	if f == "" {
		return false
	}
	for i, r := range f {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9', r == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
