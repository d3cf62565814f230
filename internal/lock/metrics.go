package lock

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	waitTimeHist *prometheus.HistogramVec
}

func newMetrics() *metrics {
	const ss = "lock"
	return &metrics{
		waitTimeHist: prometheus.NewHistogramVec(*prometheus_helpers.NewHistOpts(
			"wait_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Lock acquisition wait time distribution"),
		), []string{"mode"}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{m.waitTimeHist}
}
