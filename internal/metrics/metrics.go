package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mycsd"

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "bot_updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "handler_errors_total", Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})

	ClaimsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "claims_submitted_total", Help: "Claim submissions by result",
	}, []string{"result"})
	ClaimsReviewed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "claims_reviewed_total", Help: "Claim reviews by decision and result",
	}, []string{"decision", "result"})
	ApprovalConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "approval_conflicts_total", Help: "Approvals that lost the status compare-and-swap",
	})
	PointsDistributed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "points_distributed_total", Help: "Points written to distribution entries",
	})
	DistributionsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "distributions_skipped_total", Help: "Present attendees skipped for missing matric number",
	})
	NotificationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "notification_failures_total", Help: "Notification failures by stage",
	}, []string{"stage"})
	NotificationsDelivered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "notifications_delivered_total", Help: "Notifications delivered to telegram",
	})
)

func init() {
	prometheus.MustRegister(
		BotUpdates, HandlerErrors, DBPing,
		ClaimsSubmitted, ClaimsReviewed, ApprovalConflicts,
		PointsDistributed, DistributionsSkipped, NotificationFailures, NotificationsDelivered,
	)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
