package payments_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/mission-control/internal/adapters/payments"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeProvider struct {
	subs    []payments.Subscription
	charges []payments.Charge
	err     error
	since   time.Time
}

func (f *fakeProvider) ActiveSubscriptions(context.Context) ([]payments.Subscription, error) {
	return f.subs, f.err
}

func (f *fakeProvider) Charges(_ context.Context, since time.Time) ([]payments.Charge, error) {
	f.since = since
	return f.charges, f.err
}

func TestMonthlyAmount(t *testing.T) {
	Convey("MonthlyAmount normalizes intervals to a month", t, func() {
		So(payments.MonthlyAmount(payments.Item{UnitAmount: 5000, Quantity: 2, Interval: payments.Month}), ShouldEqual, 10000.0)
		So(payments.MonthlyAmount(payments.Item{UnitAmount: 12000, Quantity: 1, Interval: payments.Year}), ShouldEqual, 1000.0)
		So(payments.MonthlyAmount(payments.Item{UnitAmount: 1200, Quantity: 1, Interval: payments.Week}), ShouldEqual, 5200.0)
		So(payments.MonthlyAmount(payments.Item{UnitAmount: 1200, Quantity: 1, Interval: payments.Day}), ShouldEqual, 36500.0)
		So(payments.MonthlyAmount(payments.Item{UnitAmount: 3000, Quantity: 1, Interval: payments.Month, IntervalCount: 3}), ShouldEqual, 1000.0)
	})
}

func TestSummary(t *testing.T) {
	Convey("Given active subscriptions", t, func() {
		ctx := context.Background()
		p := &fakeProvider{subs: []payments.Subscription{
			{ID: "s1", CustomerID: "c1", Items: []payments.Item{{UnitAmount: 4900, Quantity: 2, Interval: payments.Month}}},
			{ID: "s2", CustomerID: "c1", Items: []payments.Item{{UnitAmount: 60000, Quantity: 1, Interval: payments.Year}}},
			{ID: "s3", CustomerID: "c2", Items: []payments.Item{{UnitAmount: 1999, Quantity: 1, Interval: payments.Month}}},
		}}
		r := payments.New(p)

		Convey("MRR is summed in major units and customers are distinct", func() {
			s, err := r.Summary(ctx)
			So(err, ShouldBeNil)
			So(s.MRR, ShouldEqual, 167.99)
			So(s.ActiveSubscriptions, ShouldEqual, 3)
			So(s.Customers, ShouldEqual, 2)
		})

		Convey("Provider errors propagate", func() {
			p.err = errors.New("rate limited")
			_, err := r.Summary(ctx)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Without a provider", t, func() {
		r := payments.New(nil)
		So(r.Configured(), ShouldBeFalse)
		_, err := r.Summary(context.Background())
		So(errors.Is(err, payments.ErrNotConfigured), ShouldBeTrue)
		months, err := r.MonthlyRevenue(context.Background(), 3)
		So(errors.Is(err, payments.ErrNotConfigured), ShouldBeTrue)
		So(months, ShouldBeEmpty)
	})
}

func TestMonthlyRevenue(t *testing.T) {
	Convey("Given charges across months", t, func() {
		now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
		p := &fakeProvider{charges: []payments.Charge{
			{Amount: 10000, Paid: true, Status: "succeeded", Created: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)},
			{Amount: 5000, Refunded: 2000, Paid: true, Status: "succeeded", Created: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
			{Amount: 9900, Paid: false, Status: "failed", Created: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
			{Amount: 7700, Paid: true, Status: "pending", Created: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		}}
		r := payments.New(p, payments.WithClock(func() time.Time { return now }))

		months, err := r.MonthlyRevenue(context.Background(), 3)
		So(err, ShouldBeNil)

		Convey("every month is present in ascending order", func() {
			So(len(months), ShouldEqual, 3)
			So(months[0].Month, ShouldEqual, "2026-01")
			So(months[1].Month, ShouldEqual, "2026-02")
			So(months[2].Month, ShouldEqual, "2026-03")
		})

		Convey("only succeeded paid charges count, net of refunds", func() {
			So(months[0].Revenue, ShouldEqual, 100.0)
			So(months[1].Revenue, ShouldEqual, 0.0)
			So(months[2].Revenue, ShouldEqual, 30.0)
		})

		Convey("charges are requested from the first day of the window", func() {
			So(p.since, ShouldEqual, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		})
	})
}
