package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fundflow"

// Metrics holds the reconciliation engine's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatewayRequests *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
	tradingCalls    *prometheus.CounterVec
	dispatches      *prometheus.CounterVec
	webhooks        *prometheus.CounterVec
	sweepRuns       *prometheus.CounterVec
	sweepRefreshed  *prometheus.CounterVec
	sweepLastRun    prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		gatewayRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Outbound provider calls partitioned by provider, operation and outcome.",
			},
			[]string{"provider", "op", "outcome"},
		),
		gatewayLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Latency of outbound provider calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider", "op"},
		),
		tradingCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "trading_engine",
				Name:      "calls_total",
				Help:      "Trading engine calls partitioned by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		dispatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orchestrator",
				Name:      "dispatch_total",
				Help:      "Leg dispatches partitioned by leg and outcome.",
			},
			[]string{"leg", "outcome"},
		),
		webhooks: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "received_total",
				Help:      "Provider callbacks partitioned by provider and result.",
			},
			[]string{"provider", "result"},
		),
		sweepRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sweeper",
				Name:      "runs_total",
				Help:      "Reconciliation sweep runs partitioned by result.",
			},
			[]string{"result"},
		),
		sweepRefreshed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sweeper",
				Name:      "refreshed_total",
				Help:      "Transactions refreshed by the sweeper partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		sweepLastRun: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "sweeper",
				Name:      "last_run_unix",
				Help:      "Unix time of the most recent sweep.",
			},
		),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

func (m *Metrics) GatewayRequest(provider, op, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.gatewayRequests.WithLabelValues(provider, op, outcome).Inc()
	m.gatewayLatency.WithLabelValues(provider, op).Observe(took.Seconds())
}

func (m *Metrics) TradingCall(op, outcome string) {
	if m == nil {
		return
	}
	m.tradingCalls.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Dispatch(leg, outcome string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(leg, outcome).Inc()
}

func (m *Metrics) Webhook(provider, result string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(provider, result).Inc()
}

func (m *Metrics) SweepRun(result string) {
	if m == nil {
		return
	}
	m.sweepRuns.WithLabelValues(result).Inc()
	m.sweepLastRun.SetToCurrentTime()
}

func (m *Metrics) SweepRefreshed(outcome string) {
	if m == nil {
		return
	}
	m.sweepRefreshed.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry the collectors were registered on.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
