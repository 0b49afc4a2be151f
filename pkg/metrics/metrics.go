// Package metrics exposes Prometheus collectors for the clone pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CloneMetrics holds the collectors the clone service reports into.
type CloneMetrics struct {
	ClonesStarted   prometheus.Counter
	ClonesCompleted prometheus.Counter
	RowsCloned      prometheus.Counter
	TypeFailures    *prometheus.CounterVec
}

// NewCloneMetrics registers clone collectors on the given registerer.
func NewCloneMetrics(reg prometheus.Registerer) *CloneMetrics {
	factory := promauto.With(reg)
	return &CloneMetrics{
		ClonesStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitecraft_clones_started_total",
			Help: "Number of organization clone operations started.",
		}),
		ClonesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitecraft_clones_completed_total",
			Help: "Number of organization clone operations that ran to completion.",
		}),
		RowsCloned: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitecraft_clone_rows_total",
			Help: "Total entity rows cloned across all operations.",
		}),
		TypeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitecraft_clone_type_failures_total",
			Help: "Entity type clone failures, labeled by entity type.",
		}, []string{"entity_type"}),
	}
}
