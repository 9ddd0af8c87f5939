package jobs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var jobLabels = []string{"job"}

var (
	jobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mycsd", Subsystem: "job", Name: "runs_total", Help: "Background job runs",
	}, jobLabels)
	jobErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mycsd", Subsystem: "job", Name: "errors_total", Help: "Background job runs that failed or panicked",
	}, jobLabels)
	jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mycsd", Subsystem: "job", Name: "duration_seconds", Help: "Background job duration",
		Buckets: prometheus.DefBuckets,
	}, jobLabels)
	jobLastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mycsd", Subsystem: "job", Name: "last_success_timestamp_seconds", Help: "Unix time of the last successful run",
	}, jobLabels)

	// outboxPicked — сколько уведомлений взял последний проход; упёрлось в batch — очередь растёт
	outboxPicked = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mycsd", Subsystem: "notify", Name: "picked", Help: "Notifications picked by the last dispatch pass",
	})
)

func init() {
	prometheus.MustRegister(jobRuns, jobErrors, jobDuration, jobLastSuccess, outboxPicked)
}

func observeRun(name string, start time.Time, failed bool) {
	jobRuns.WithLabelValues(name).Inc()
	jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if failed {
		jobErrors.WithLabelValues(name).Inc()
		return
	}
	jobLastSuccess.WithLabelValues(name).SetToCurrentTime()
}
