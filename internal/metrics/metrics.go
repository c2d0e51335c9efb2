package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vicu"

// Metrics exposes Prometheus collectors for Vicu activity. A nil *Metrics is
// valid and records nothing, which keeps tests free of registry setup.
type Metrics struct {
	generations     *prometheus.CounterVec
	checkins        prometheus.Counter
	xpAwarded       prometheus.Counter
	transitions     *prometheus.CounterVec
	messages        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Step and plan generations by outcome (generated or fallback).",
		}, []string{"kind", "outcome"}),
		checkins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkins_total",
			Help:      "Steps marked done.",
		}),
		xpAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_awarded_total",
			Help:      "XP granted to users.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_transitions_total",
			Help:      "Accepted stage transitions.",
		}, []string{"from", "to"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Messaging gateway traffic by direction and outcome.",
		}, []string{"channel", "direction", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	reg.MustRegister(m.generations, m.checkins, m.xpAwarded, m.transitions, m.messages, m.requestDuration)
	return m
}

func (m *Metrics) Generation(kind, outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) Checkin(xp int) {
	if m == nil {
		return
	}
	m.checkins.Inc()
	m.xpAwarded.Add(float64(xp))
}

func (m *Metrics) XP(xp int) {
	if m == nil {
		return
	}
	m.xpAwarded.Add(float64(xp))
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Message(channel, direction, outcome string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(channel, direction, outcome).Inc()
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, statusClass(status)).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
