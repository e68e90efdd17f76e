// Package metrics exports BKDF stretch statistics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	obs, err := metrics.New(reg)
//	if err != nil { log.Fatal(err) }
//	h, _ := bkdf.NewHasher(bkdf.HasherOptions{Observer: obs})
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hasbyte1/go-bkdf/bkdf"
)

const namespace = "bkdf"

// Observer implements [bkdf.Observer] with Prometheus collectors.
//
// # Thread safety
//
// Observer is safe for concurrent use.
type Observer struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cost     *prometheus.HistogramVec
}

var _ bkdf.Observer = (*Observer)(nil)

// New creates the collectors and registers them with reg. A nil reg uses
// [prometheus.DefaultRegisterer].
func New(reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &Observer{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stretch_total",
			Help:      "Number of bcrypt stretch invocations.",
		}, []string{"op", "version"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stretch_duration_seconds",
			Help:      "Wall time of a single bcrypt stretch.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"op"}),
		cost: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stretch_cost",
			Help:      "Work factor of bcrypt stretch invocations.",
			Buckets:   prometheus.LinearBuckets(4, 2, 14),
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{o.total, o.duration, o.cost} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}
	return o, nil
}

// ObserveStretch implements [bkdf.Observer].
func (o *Observer) ObserveStretch(op string, v bkdf.Version, cost int, elapsed time.Duration) {
	o.total.WithLabelValues(op, strconv.Itoa(int(v.Code()))).Inc()
	o.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	o.cost.WithLabelValues(op).Observe(float64(cost))
}
