package model

import "github.com/prometheus/client_golang/prometheus"

// MetricsProvider is implemented by every component that owns collectors.
type MetricsProvider interface {
	Metrics() []prometheus.Collector
}
