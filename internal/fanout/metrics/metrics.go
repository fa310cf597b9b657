// Package metrics exposes Prometheus counters for the fan-out engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsTotal     *prometheus.CounterVec
	RecipientsTotal *prometheus.CounterVec
	FailuresTotal   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isleport_fanout_events_total",
			Help: "Fan-out events processed, by event kind.",
		}, []string{"kind"}),
		RecipientsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isleport_fanout_recipients_total",
			Help: "Notification rows written by fan-out, by event kind.",
		}, []string{"kind"}),
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "isleport_fanout_failures_total",
			Help: "Fan-out attempts that failed to persist, by event kind.",
		}, []string{"kind"}),
	}
}
