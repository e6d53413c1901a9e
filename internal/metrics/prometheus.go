// Package metrics records evaluation activity for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"AlertSentinel/internal/model"
	"AlertSentinel/internal/strategy"
	"AlertSentinel/internal/window"
)

// Recorder holds the sentinel's Prometheus collectors.
type Recorder struct {
	evaluations  *prometheus.CounterVec
	actions      *prometheus.CounterVec
	alertStates  *prometheus.GaugeVec
	rows         prometheus.Gauge
	ingested     prometheus.Counter
	errorsTotal  *prometheus.CounterVec
	evalDuration prometheus.Histogram
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_evaluations_total",
				Help: "Total number of strategy evaluations",
			},
			[]string{"mode"},
		),
		actions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_actions_total",
				Help: "Evaluations that resolved a last action, by direction",
			},
			[]string{"action"},
		),
		alertStates: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentinel_alerts",
				Help: "Alerts in the latest snapshot by lifecycle state",
			},
			[]string{"state"},
		),
		rows: f.NewGauge(prometheus.GaugeOpts{
			Name: "sentinel_triggered_rows",
			Help: "Rows in the latest evaluation",
		}),
		ingested: f.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_alerts_ingested_total",
			Help: "Alerts accepted through the webhook",
		}),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		evalDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_evaluation_duration_seconds",
			Help:    "Duration of collect plus evaluate",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordEvaluation records one evaluation outcome and how long it took.
func (r *Recorder) RecordEvaluation(mode string, res strategy.Result, took time.Duration) {
	r.evaluations.WithLabelValues(mode).Inc()
	r.rows.Set(float64(len(res.TickerData)))
	r.evalDuration.Observe(took.Seconds())
	if res.LastAction != nil {
		r.actions.WithLabelValues(string(res.LastAction.Action)).Inc()
	}
}

// RecordAlertStates sets the lifecycle gauges from a snapshot's alerts.
func (r *Recorder) RecordAlertStates(f *window.Filter, alerts []model.Alert, now time.Time) {
	counts := map[window.State]int{window.Live: 0, window.Expiring: 0, window.Expired: 0}
	for _, a := range alerts {
		counts[f.Classify(a, now)]++
	}
	for st, n := range counts {
		r.alertStates.WithLabelValues(string(st)).Set(float64(n))
	}
}

// RecordIngested counts one accepted webhook alert.
func (r *Recorder) RecordIngested() {
	r.ingested.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
