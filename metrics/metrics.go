// Package metrics contains the application metrics and the Prometheus
// exposition server.
package metrics

import (
	"time"

	"github.com/VictoriaMetrics/metrics"
)

var (
	cloneSuccesses = metrics.NewCounter(`clone_requests_total{result="success"}`)
	cloneFailures  = metrics.NewCounter(`clone_requests_total{result="failure"}`)
	cloneRejected  = metrics.NewCounter(`clone_requests_total{result="rejected"}`)

	cloneDuration = metrics.NewSummary("clone_duration_seconds")
)

// IncCloneSuccess counts a fully applied clone.
func IncCloneSuccess() {
	cloneSuccesses.Inc()
}

// IncCloneFailure counts a clone that failed in the pipeline.
func IncCloneFailure() {
	cloneFailures.Inc()
}

// IncCloneRejected counts a request rejected before the pipeline started.
func IncCloneRejected() {
	cloneRejected.Inc()
}

// ObserveCloneDuration records how long a successful clone took, measured
// from the given start time.
func ObserveCloneDuration(start time.Time) {
	cloneDuration.UpdateDuration(start)
}
