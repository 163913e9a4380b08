package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"valentine/internal/models"
)

var (
	invitationStateDesc = prometheus.NewDesc(
		"valentine_invitations",
		"Logged invitation links by lifecycle state",
		[]string{"state"},
		nil,
	)

	telemetryCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valentine_telemetry_calls_total",
			Help: "Telemetry store calls by event and outcome",
		},
		[]string{"event", "outcome"},
	)

	linksCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "valentine_links_created_total",
		Help: "Invitation links generated",
	})
)

// StateCounter is the subset of the database the collector reads.
type StateCounter interface {
	CountLogsByState(ctx context.Context) ([]models.LogStateCount, error)
}

// InvitationCollector is a custom Prometheus collector that reads lifecycle
// state counts from the database on each scrape.
type InvitationCollector struct {
	db      StateCounter
	timeout time.Duration
}

// Describe sends the metric descriptor to the channel.
func (c *InvitationCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- invitationStateDesc
}

// Collect queries the database for state counts and emits them as gauges.
func (c *InvitationCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	counts, err := c.db.CountLogsByState(ctx)
	if err != nil {
		slog.Error("failed to collect invitation state metrics", "error", err)
		return
	}
	for _, s := range counts {
		ch <- prometheus.MustNewConstMetric(
			invitationStateDesc,
			prometheus.GaugeValue,
			float64(s.Count),
			s.State,
		)
	}
}

var registerOnce sync.Once

// Init registers the collectors with the default registry. database may be
// nil when telemetry is not stored in Postgres. Must be called once at
// startup.
func Init(database StateCounter) {
	registerOnce.Do(func() {
		prometheus.MustRegister(telemetryCalls, linksCreated)
		if database != nil {
			prometheus.MustRegister(&InvitationCollector{db: database, timeout: 5 * time.Second})
		}
	})
}

// RecordTelemetryCall counts a telemetry store call. It matches the
// telemetry.WithObserver signature.
func RecordTelemetryCall(event, outcome string) {
	telemetryCalls.WithLabelValues(event, outcome).Inc()
}

// RecordLinkCreated counts a generated link.
func RecordLinkCreated() {
	linksCreated.Inc()
}
