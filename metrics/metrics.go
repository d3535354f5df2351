// Package metrics exposes prometheus instrumentation of the challenge loop.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blobguess"

type Metrics struct {
	Requests    *prometheus.CounterVec
	Retries     *prometheus.CounterVec
	Rounds      prometheus.Counter
	Wins        prometheus.Gauge
	Predictions *prometheus.CounterVec
}

// New creates the collectors and registers them with reg when it is not nil.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Challenge service responses by route and status code.",
		}, []string{"route", "code"}),
		Retries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Failed challenge service requests that were retried.",
		}, []string{"route"}),
		Rounds: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Completed fetch, predict and submit rounds.",
		}),
		Wins: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wins",
			Help:      "Win count last reported by the challenge service.",
		}),
		Predictions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Submitted predictions by label.",
		}, []string{"label"}),
	}
}

// Request records a response status. Code 0 stands for a transport failure.
func (m *Metrics) Request(route string, code int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) Retry(route string) {
	if m == nil {
		return
	}
	m.Retries.WithLabelValues(route).Inc()
}

// Round records a finished round and the reported win count.
func (m *Metrics) Round(label string, wins int) {
	if m == nil {
		return
	}
	m.Rounds.Inc()
	m.Predictions.WithLabelValues(label).Inc()
	m.Wins.Set(float64(wins))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
