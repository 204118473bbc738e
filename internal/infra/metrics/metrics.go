package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	prospectsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prospects_created_total",
			Help: "Total number of prospects created",
		},
	)

	ebookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebook_deliveries_total",
			Help: "Ebook delivery attempts by outcome",
		},
		[]string{"status"},
	)

	membershipChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_checks_total",
			Help: "SBC membership checks by result",
		},
		[]string{"result"},
	)

	verificationBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verification_batches_total",
			Help: "Total number of batch verification runs",
		},
	)

	newMembers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verification_new_members_total",
			Help: "Prospects newly confirmed as SBC members",
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

func RecordProspectCreated() {
	prospectsCreated.Inc()
}

// RecordEbookDelivery status is one of sent, dry_run, queued, failed.
func RecordEbookDelivery(status string) {
	ebookDeliveries.WithLabelValues(status).Inc()
}

func RecordMembershipCheck(result string) {
	membershipChecks.WithLabelValues(result).Inc()
}

func RecordVerificationBatch(found int) {
	verificationBatches.Inc()
	newMembers.Add(float64(found))
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
