package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// SubmissionsTotal counts report submissions by outcome.
	SubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cleanapp",
		Subsystem: "reports",
		Name:      "submissions_total",
		Help:      "Total number of report submissions, labeled by result.",
	}, []string{"result"})

	// ClassifierDurationSeconds is the wall time of the vision classifier call.
	ClassifierDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cleanapp",
		Subsystem: "reports",
		Name:      "classifier_duration_seconds",
		Help:      "Time spent waiting for the vision classifier per submission.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	})

	// CreditFailureTotal counts credits that failed after the report row was
	// already persisted. A non-zero value means orphaned reports exist.
	CreditFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cleanapp",
		Subsystem: "reports",
		Name:      "credit_failure_total",
		Help:      "Total number of reward credits that failed after report persistence.",
	})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			SubmissionsTotal,
			ClassifierDurationSeconds,
			CreditFailureTotal,
		)
	})
}
