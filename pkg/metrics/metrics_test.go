package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating a manager with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test_prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.enabled, ShouldBeFalse)
				So(manager.refreshInterval, ShouldEqual, 5*time.Second)
			})

			Convey("And the metrics live on the given registry", func() {
				manager.replications.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_test_prefix_replications_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When passing empty values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "inningsim")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestSimulationMetrics(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording replications", func() {
			before, err := ReplicationsTotal()
			So(err, ShouldBeNil)
			RecordReplications(250)

			Convey("Then the counter reads back the total", func() {
				after, err := ReplicationsTotal()
				So(err, ShouldBeNil)
				So(after-before, ShouldEqual, 250)
			})
		})

		Convey("When recording slate outcomes", func() {
			So(func() {
				RecordReplicationFailures("bullpen_exhausted", 3)
				RecordSlate("done", 125.0)
				RecordSlate("failed", 2.0)
				ObserveGameInnings(9)
				ObserveGameInnings(12)
				RecordPitchingChanges(7)
				RecordBullpenFallback("stay_in", 1)
				RecordGameEndings(1, 2, 0)
			}, ShouldNotPanic)
		})

		Convey("When recording service metrics", func() {
			So(func() {
				RecordJobSubmitted()
				RecordJobDuplicate()
				UpdateQueueSize(3)
				UpdateQueueCapacity(64)
				UpdateQueueUtilization(3.0 / 64)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueWaitLatency(1.5)
				UpdateWorkerCount(2)
				UpdateWorkerActiveCount(1)
				RecordWorkerProcessingLatency(40)
				RecordWorkerError()
				UpdateResultsStored(10)
				RecordResultEvicted()
				RecordHTTPRequest("/slates", "POST", "202")
				RecordHTTPRequestDuration("/slates", "POST", "202", 3.0)
				RecordErrorByComponent("worker", "configuration")
			}, ShouldNotPanic)
		})

		Convey("When sampling the runtime", func() {
			So(CollectSystem, ShouldNotPanic)
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			So(Enabled(), ShouldBeTrue)
		})

		Convey("The custom registry exposes the simulation counters", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := map[string]bool{}
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["inningsim_simulator_replications_total"], ShouldBeTrue)
			So(names["inningsim_simulator_walk_offs_total"], ShouldBeTrue)
		})
	})
}
