package health_test

import (
	"testing"
	"time"

	"github.com/okian/mission-control/internal/domain/health"
	"github.com/okian/mission-control/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const day = 24 * time.Hour

func ago(now time.Time, d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func TestScore(t *testing.T) {
	Convey("Given a fixed read time", t, func() {
		now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

		Convey("When the partner was never contacted", func() {
			Convey("Then the score is 10", func() {
				So(health.Score(nil, now), ShouldEqual, 10)
			})
		})

		Convey("When the last contact was one day ago", func() {
			So(health.Score(ago(now, day), now), ShouldEqual, 100)
		})

		Convey("When the last contact was three days ago", func() {
			So(health.Score(ago(now, 3*day), now), ShouldEqual, 100)
		})

		Convey("When the age sits on the bucket boundaries", func() {
			Convey("Then exactly 7 days falls into the lower bucket", func() {
				So(health.Score(ago(now, 7*day), now), ShouldEqual, 70)
			})
			Convey("Then one millisecond under 7 days is still healthy", func() {
				So(health.Score(ago(now, 7*day-time.Millisecond), now), ShouldEqual, 100)
			})
			Convey("Then exactly 14 days scores 40", func() {
				So(health.Score(ago(now, 14*day), now), ShouldEqual, 40)
			})
			Convey("Then exactly 30 days scores 10", func() {
				So(health.Score(ago(now, 30*day), now), ShouldEqual, 10)
			})
			Convey("Then 29.9 days still scores 40", func() {
				So(health.Score(ago(now, 30*day-2*time.Hour), now), ShouldEqual, 40)
			})
		})

		Convey("When the last contact is far in the past", func() {
			So(health.Score(ago(now, 400*day), now), ShouldEqual, 10)
		})

		Convey("When the last contact is in the future", func() {
			So(health.Score(ago(now, -2*day), now), ShouldEqual, 100)
		})

		Convey("When the timestamps use different zones", func() {
			loc := time.FixedZone("UTC-8", -8*3600)
			last := now.Add(-6 * day).In(loc)
			So(health.Score(&last, now), ShouldEqual, 100)
		})

		Convey("When age increases the score never increases", func() {
			prev := health.Score(ago(now, 0), now)
			for h := 0; h <= 40*24; h++ {
				s := health.Score(ago(now, time.Duration(h)*time.Hour), now)
				So(s, ShouldBeLessThanOrEqualTo, prev)
				So(s, ShouldBeIn, []int{10, 40, 70, 100})
				prev = s
			}
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given partners carrying stale persisted scores", t, func() {
		now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
		ps := []model.Partner{
			{Name: "fresh", LastContactAt: ago(now, 2*day), HealthScore: 10},
			{Name: "never", HealthScore: 100},
			{Name: "stale", LastContactAt: ago(now, 20*day), HealthScore: 100},
		}

		Convey("When recomputing", func() {
			health.ApplyAll(ps, now)

			Convey("Then persisted values are overwritten", func() {
				So(ps[0].HealthScore, ShouldEqual, 100)
				So(ps[1].HealthScore, ShouldEqual, 10)
				So(ps[2].HealthScore, ShouldEqual, 40)
			})
		})

		Convey("When applying to nil", func() {
			So(func() { health.Apply(nil, now) }, ShouldNotPanic)
		})
	})
}

func TestAgeDaysAndLabel(t *testing.T) {
	Convey("Given two instants 36 hours apart", t, func() {
		now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
		So(health.AgeDays(now.Add(-36*time.Hour), now), ShouldEqual, 1.5)
	})

	Convey("Given each score bucket", t, func() {
		So(health.Label(100), ShouldEqual, "healthy")
		So(health.Label(70), ShouldEqual, "cooling")
		So(health.Label(40), ShouldEqual, "at_risk")
		So(health.Label(10), ShouldEqual, "dormant")
	})
}
