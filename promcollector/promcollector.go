// Package promcollector implements veffgo.MetricsCollector with Prometheus
// metrics.
//
//	reg := prometheus.NewRegistry()
//	mc, err := promcollector.New(reg)
//	w := batchwriter.New(sink, veffgo.WithMetricsCollector(mc))
package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/veffgo"
)

const namespace = "veffgo"

// Collector records writer activity as Prometheus metrics.
type Collector struct {
	opLatency *prometheus.HistogramVec
	rows      *prometheus.CounterVec
	writes    *prometheus.CounterVec
	closes    *prometheus.CounterVec
}

var _ veffgo.MetricsCollector = (*Collector)(nil)

// New creates the metrics and registers them on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of writer operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"writer", "op", "status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Total records written",
		}, []string{"writer"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Total batch writes",
		}, []string{"writer", "status"}),
		closes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "closes_total",
			Help:      "Total writer closes",
		}, []string{"writer", "status"}),
	}
	for _, m := range []prometheus.Collector{c.opLatency, c.rows, c.writes, c.closes} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on registration errors.
func MustNew(reg prometheus.Registerer) *Collector {
	c, err := New(reg)
	if err != nil {
		panic(err)
	}
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordWrite implements veffgo.MetricsCollector.
func (c *Collector) RecordWrite(writer string, rows int, d time.Duration, err error) {
	st := status(err)
	c.opLatency.WithLabelValues(writer, "write", st).Observe(d.Seconds())
	c.writes.WithLabelValues(writer, st).Inc()
	if err == nil {
		c.rows.WithLabelValues(writer).Add(float64(rows))
	}
}

// RecordClose implements veffgo.MetricsCollector.
func (c *Collector) RecordClose(writer string, d time.Duration, err error) {
	st := status(err)
	c.opLatency.WithLabelValues(writer, "close", st).Observe(d.Seconds())
	c.closes.WithLabelValues(writer, st).Inc()
}
