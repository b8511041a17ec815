// Package metrics exposes Prometheus collectors for the emulator.
//
// A nil *Recorder is valid and records nothing, so components can be wired
// without a registry in tests and embedded use.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const promNamespace = "lablink"

// Recorder groups the emulator collectors.
type Recorder struct {
	requests  *prom.CounterVec
	durations *prom.HistogramVec
	conflicts prom.Counter
	persists  *prom.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prom.Registerer) (*Recorder, error) {
	r := &Recorder{
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: promNamespace,
			Name:      "requests_total",
			Help:      "routed calls by route pattern and error code",
		}, []string{"route", "code"}),
		durations: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: promNamespace,
			Name:      "request_duration_seconds",
			Help:      "timings for routed calls",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
		conflicts: prom.NewCounter(prom.CounterOpts{
			Namespace: promNamespace,
			Name:      "reservation_conflicts_total",
			Help:      "reservation writes rejected because of an overlap",
		}),
		persists: prom.NewCounterVec(prom.CounterOpts{
			Namespace: promNamespace,
			Name:      "persist_total",
			Help:      "state persist attempts by result",
		}, []string{"result"}),
	}

	if reg != nil {
		for _, c := range []prom.Collector{r.requests, r.durations, r.conflicts, r.persists} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// ObserveRequest records one routed call. code is "OK" for successes.
func (r *Recorder) ObserveRequest(route, code string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(route, code).Inc()
	r.durations.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ReservationConflict counts a rejected overlapping reservation.
func (r *Recorder) ReservationConflict() {
	if r == nil {
		return
	}
	r.conflicts.Inc()
}

// Persist records the outcome of a slot write.
func (r *Recorder) Persist(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.persists.WithLabelValues(result).Inc()
}
