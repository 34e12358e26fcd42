package payments

import (
	"context"
	"math"
	"time"
)

const monthKeyLayout = "2006-01"

// Summary is the current recurring revenue picture. Amounts are in major
// currency units.
type Summary struct {
	MRR                 float64 `json:"mrr"`
	ActiveSubscriptions int     `json:"active_subscriptions"`
	Customers           int     `json:"customers"`
}

// MonthRevenue is net collected revenue for one calendar month (UTC).
type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// Revenue computes rollups over a Provider.
type Revenue struct {
	provider Provider
	now      func() time.Time
}

// Option configures Revenue.
type Option func(*Revenue)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Revenue) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a Revenue rollup. A nil provider yields ErrNotConfigured from
// every method.
func New(p Provider, opts ...Option) *Revenue {
	r := &Revenue{provider: p, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Configured reports whether a provider is attached.
func (r *Revenue) Configured() bool { return r != nil && r.provider != nil }

// Summary sums active subscriptions normalized to a monthly amount.
func (r *Revenue) Summary(ctx context.Context) (Summary, error) {
	if !r.Configured() {
		return Summary{}, ErrNotConfigured
	}
	subs, err := r.provider.ActiveSubscriptions(ctx)
	if err != nil {
		return Summary{}, err
	}
	var cents float64
	customers := make(map[string]struct{}, len(subs))
	for _, s := range subs {
		for _, it := range s.Items {
			cents += MonthlyAmount(it)
		}
		if s.CustomerID != "" {
			customers[s.CustomerID] = struct{}{}
		}
	}
	return Summary{
		MRR:                 toMajor(cents),
		ActiveSubscriptions: len(subs),
		Customers:           len(customers),
	}, nil
}

// MonthlyRevenue returns succeeded paid charges net of refunds for the last
// months calendar months including the current one, oldest first. Months
// without charges are present with zero revenue.
func (r *Revenue) MonthlyRevenue(ctx context.Context, months int) ([]MonthRevenue, error) {
	if !r.Configured() {
		return []MonthRevenue{}, ErrNotConfigured
	}
	if months < 1 {
		months = 1
	}
	now := r.now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	charges, err := r.provider.Charges(ctx, first)
	if err != nil {
		return []MonthRevenue{}, err
	}
	buckets := make(map[string]int64, months)
	for _, c := range charges {
		if !c.Paid || c.Status != "succeeded" || c.Created.Before(first) {
			continue
		}
		buckets[c.Created.UTC().Format(monthKeyLayout)] += c.Amount - c.Refunded
	}

	out := make([]MonthRevenue, 0, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format(monthKeyLayout)
		out = append(out, MonthRevenue{Month: key, Revenue: toMajor(float64(buckets[key]))})
	}
	return out, nil
}

// MonthlyAmount normalizes one item to minor units per month.
func MonthlyAmount(it Item) float64 {
	qty := it.Quantity
	if qty <= 0 {
		qty = 1
	}
	count := it.IntervalCount
	if count <= 0 {
		count = 1
	}
	amount := float64(it.UnitAmount*qty) / float64(count)
	switch it.Interval {
	case Year:
		return amount / 12
	case Week:
		return amount * 52 / 12
	case Day:
		return amount * 365 / 12
	default:
		return amount
	}
}

func toMajor(cents float64) float64 {
	return math.Round(cents) / 100
}
