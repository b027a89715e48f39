// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package model

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "juju_mirror"
	metricsSubsystem = "model"
)

// Collector is a prometheus.Collector reporting watch loop activity.
type Collector struct {
	batches        prometheus.Counter
	deltas         *prometheus.CounterVec
	observerErrors prometheus.Counter
	inflight       prometheus.Gauge
}

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		batches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "watcher_batches_total",
				Help:      "The number of delta batches received from the all-watcher.",
			},
		),
		deltas: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "deltas_total",
				Help:      "The number of deltas applied to the model state.",
			}, []string{"kind", "verb"},
		),
		observerErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "observer_errors_total",
				Help:      "The number of errors returned by observers.",
			},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "inflight_notifications",
				Help:      "The number of published notifications not yet processed by every observer.",
			},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.batches.Describe(ch)
	c.deltas.Describe(ch)
	c.observerErrors.Describe(ch)
	c.inflight.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.batches.Collect(ch)
	c.deltas.Collect(ch)
	c.observerErrors.Collect(ch)
	c.inflight.Collect(ch)
}
