package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics turns events into Prometheus series on its own registry.
type Metrics struct {
	Attempts     prometheus.Counter
	TierResults  *prometheus.CounterVec
	TierDuration *prometheus.HistogramVec
	Fallbacks    prometheus.Counter
	Rejected     prometheus.Counter
	Records      *prometheus.GaugeVec
	State        *prometheus.GaugeVec

	registry *prometheus.Registry
}

// Session states tracked by the state gauge.
var sessionStates = []string{"idle", "loading", "ready_live", "error"}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "enrollment",
			Name:      "resolve_attempts_total",
			Help:      "Live data resolution attempts started",
		}),
		TierResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enrollment",
			Name:      "tier_results_total",
			Help:      "Outcome of each source tier",
		}, []string{"tier", "result"}),
		TierDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "enrollment",
			Name:      "tier_duration_seconds",
			Help:      "Time spent fetching from a source tier",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tier"}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "enrollment",
			Name:      "fallbacks_total",
			Help:      "Attempts where every live tier failed",
		}),
		Rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "enrollment",
			Name:      "refresh_rejected_total",
			Help:      "Refresh calls ignored because one was in flight",
		}),
		Records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "enrollment",
			Name:      "tier_records",
			Help:      "Records returned by the last successful fetch of a tier",
		}, []string{"tier"}),
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "enrollment",
			Name:      "session_state",
			Help:      "1 for the current live-session state",
		}, []string{"state"}),
	}

	m.registry.MustRegister(m.Attempts, m.TierResults, m.TierDuration, m.Fallbacks, m.Rejected, m.Records, m.State)
	return m
}

func (m *Metrics) Emit(e Event) {
	switch e.Kind {
	case AttemptStarted:
		m.Attempts.Inc()
	case TierSucceeded:
		m.TierResults.WithLabelValues(e.Tier, "success").Inc()
		m.TierDuration.WithLabelValues(e.Tier).Observe(e.Duration.Seconds())
		m.Records.WithLabelValues(e.Tier).Set(float64(e.Records))
	case TierFailed:
		m.TierResults.WithLabelValues(e.Tier, "failure").Inc()
		m.TierDuration.WithLabelValues(e.Tier).Observe(e.Duration.Seconds())
	case TierSkipped:
		m.TierResults.WithLabelValues(e.Tier, "skipped").Inc()
	case FellBack:
		m.Fallbacks.Inc()
	case RefreshRejected:
		m.Rejected.Inc()
	case StateChanged:
		for _, s := range sessionStates {
			v := 0.0
			if s == e.State {
				v = 1
			}
			m.State.WithLabelValues(s).Set(v)
		}
	}
}

// Registry exposes the underlying registry (tests, custom exposition).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
