package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "mission_control")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics carry the custom naming and labels", func() {
				manager.upstreamCalls.WithLabelValues("store", "select", "200").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, mf := range families {
					if mf.GetName() == "test_namespace_test_subsystem_upstream_calls_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			_ = NewManager(WithPrometheusRegistry(registry))

			Convey("Then registration panics on duplicates", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("partners", "GET", "200")
				RecordHTTPRequestDuration("partners", "GET", "200", 12)
				RecordAuthFailure()
			}, ShouldNotPanic)
		})

		Convey("When recording upstream calls", func() {
			before := testutil.ToFloat64(globalManager.upstreamCalls.WithLabelValues("payments", "list", "200"))
			RecordUpstreamCall("payments", "list", "200")
			RecordUpstreamLatency("payments", "list", 40)

			Convey("Then the counter increases", func() {
				after := testutil.ToFloat64(globalManager.upstreamCalls.WithLabelValues("payments", "list", "200"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording business metrics", func() {
			ObserveHealthScore(100)
			ObserveHealthScore(10)
			RecordKnowledgeLookup("fallback")
			RecordSecondaryFailure("touch_last_contact")
			UpdatePipeline(12, 3000)

			Convey("Then the pipeline gauges hold the last values", func() {
				So(testutil.ToFloat64(globalManager.pipelinePartners), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.pipelineValue), ShouldEqual, 3000)
			})
		})

		Convey("When recording error and system metrics", func() {
			So(func() {
				RecordErrorByType("server_error", "high")
				RecordErrorByEndpoint("partners", "GET", "server_error")
				RecordErrorLatency("http", "server_error", 5)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("When gathering the registry", func() {
			RecordHTTPRequest("pipeline", "GET", "200")
			families, err := GetRegistry().Gather()

			Convey("Then the namespace prefixes every metric", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, mf := range families {
					So(strings.HasPrefix(mf.GetName(), "mission_control_dashboard_"), ShouldBeTrue)
				}
			})
		})
	})
}
