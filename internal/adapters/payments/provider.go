// Package payments computes recurring and monthly revenue from the payments
// provider.
package payments

import (
	"context"
	"time"
)

// Interval is a recurring price interval.
type Interval string

// Recurring intervals.
const (
	Day   Interval = "day"
	Week  Interval = "week"
	Month Interval = "month"
	Year  Interval = "year"
)

// Item is one priced line of a subscription. UnitAmount is in minor units.
type Item struct {
	UnitAmount    int64
	Quantity      int64
	Interval      Interval
	IntervalCount int64
}

// Subscription is an active subscription.
type Subscription struct {
	ID         string
	CustomerID string
	Items      []Item
}

// Charge is a captured payment. Amounts are in minor units.
type Charge struct {
	Amount   int64
	Refunded int64
	Paid     bool
	Status   string
	Created  time.Time
}

// Provider reads billing data from the payments backend.
type Provider interface {
	ActiveSubscriptions(ctx context.Context) ([]Subscription, error)
	Charges(ctx context.Context, since time.Time) ([]Charge, error)
}
