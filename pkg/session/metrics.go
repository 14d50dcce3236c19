package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for the session counters.
const (
	sourceNew    = "new"
	sourceCookie = "cookie"
	sourceCache  = "cache"
	sourceMiss   = "miss"

	placementCookie  = "cookie"
	placementCache   = "cache"
	placementSkipped = "skipped"
)

// metrics holds the Prometheus counters of a Manager. A nil *metrics is a no-op.
type metrics struct {
	resolved  *prometheus.CounterVec
	persisted *prometheus.CounterVec
	errors    *prometheus.CounterVec
	revoked   prometheus.Counter
}

// newMetrics registers the session counters with reg.
// Registering twice with the same registry panics.
func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)

	return &metrics{
		resolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_resolved_total",
			Help: "Total number of sessions resolved, by source",
		}, []string{"source"}),

		persisted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_persisted_total",
			Help: "Total number of sessions persisted, by placement",
		}, []string{"placement"}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_errors_total",
			Help: "Total number of session failures, by kind",
		}, []string{"kind"}),

		revoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "session_revoked_total",
			Help: "Total number of revoked sessions",
		}),
	}
}

func (m *metrics) resolve(source string) {
	if m != nil {
		m.resolved.WithLabelValues(source).Inc()
	}
}

func (m *metrics) persist(placement string) {
	if m != nil {
		m.persisted.WithLabelValues(placement).Inc()
	}
}

func (m *metrics) fail(err error) {
	if m != nil {
		m.errors.WithLabelValues(errorKind(err)).Inc()
	}
}

func (m *metrics) revoke() {
	if m != nil {
		m.revoked.Inc()
	}
}
