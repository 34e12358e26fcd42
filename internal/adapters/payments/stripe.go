package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/okian/mission-control/pkg/logger"
	"github.com/okian/mission-control/pkg/metrics"
)

const (
	upstreamTarget = "payments"
	pageSize       = 100
)

// Stripe reads subscriptions and charges through the Stripe API.
type Stripe struct {
	api      *client.API
	backends *stripe.Backends
	logger   logger.Logger
}

// StripeOption configures a Stripe provider.
type StripeOption func(*Stripe)

// WithStripeLogger sets the provider logger.
func WithStripeLogger(l logger.Logger) StripeOption {
	return func(s *Stripe) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBackends overrides the Stripe backends, used to point the client at a
// local server.
func WithBackends(b *stripe.Backends) StripeOption {
	return func(s *Stripe) {
		s.backends = b
	}
}

// NewStripe creates a provider for the given secret key.
func NewStripe(key string, opts ...StripeOption) (*Stripe, error) {
	if key == "" {
		return nil, ErrNotConfigured
	}
	s := &Stripe{api: &client.API{}, logger: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.api.Init(key, s.backends)
	return s, nil
}

// ActiveSubscriptions lists every active subscription with its prices.
func (s *Stripe) ActiveSubscriptions(ctx context.Context) ([]Subscription, error) {
	start := time.Now()
	params := &stripe.SubscriptionListParams{
		Status: stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(pageSize)

	var out []Subscription
	it := s.api.Subscriptions.List(params)
	for it.Next() {
		sub := it.Subscription()
		out = append(out, convertSubscription(sub))
	}
	if err := s.finish(ctx, "list_subscriptions", start, it.Err()); err != nil {
		return nil, err
	}
	return out, nil
}

// Charges lists charges created at or after since.
func (s *Stripe) Charges(ctx context.Context, since time.Time) ([]Charge, error) {
	start := time.Now()
	params := &stripe.ChargeListParams{
		CreatedRange: &stripe.RangeQueryParams{GreaterThanOrEqual: since.Unix()},
	}
	params.Context = ctx
	params.Limit = stripe.Int64(pageSize)

	var out []Charge
	it := s.api.Charges.List(params)
	for it.Next() {
		ch := it.Charge()
		out = append(out, Charge{
			Amount:   ch.Amount,
			Refunded: ch.AmountRefunded,
			Paid:     ch.Paid,
			Status:   string(ch.Status),
			Created:  time.Unix(ch.Created, 0).UTC(),
		})
	}
	if err := s.finish(ctx, "list_charges", start, it.Err()); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Stripe) finish(ctx context.Context, op string, start time.Time, err error) error {
	metrics.RecordUpstreamLatency(upstreamTarget, op, float64(time.Since(start).Milliseconds()))
	if err == nil {
		metrics.RecordUpstreamCall(upstreamTarget, op, "ok")
		return nil
	}
	outcome := "error"
	var se *stripe.Error
	if errors.As(err, &se) {
		outcome = strconv.Itoa(se.HTTPStatusCode)
	}
	metrics.RecordUpstreamCall(upstreamTarget, op, outcome)
	s.logger.Error(ctx, "payments request failed", logger.String("op", op), logger.Error(err))
	return fmt.Errorf("%w: %s: %v", ErrProvider, op, err)
}

func convertSubscription(sub *stripe.Subscription) Subscription {
	out := Subscription{ID: sub.ID}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items == nil {
		return out
	}
	for _, it := range sub.Items.Data {
		if it == nil || it.Price == nil {
			continue
		}
		item := Item{UnitAmount: it.Price.UnitAmount, Quantity: it.Quantity, Interval: Month, IntervalCount: 1}
		if r := it.Price.Recurring; r != nil {
			item.Interval = Interval(r.Interval)
			item.IntervalCount = r.IntervalCount
		}
		out.Items = append(out.Items, item)
	}
	return out
}
