package bolt_engine

import (
	"time"

	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	handleTimeHist     *prometheus.HistogramVec
	requestsCnt        *prometheus.CounterVec
	errProcessCnt      *prometheus.CounterVec
	repoSizeItemsGauge prometheus.GaugeFunc
}

func newMetrics(e *Engine) *metrics {
	const ss = "bolt_engine"
	return &metrics{
		handleTimeHist: prometheus.NewHistogramVec(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Handle time distribution"),
		), []string{"op"}),
		requestsCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "requests_cnt",
			Subsystem: ss,
			Help:      "Count of incoming requests",
		}, []string{"op"}),
		errProcessCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "err_processes_cnt",
			Subsystem: ss,
			Help:      "Count of processes finished with non-nil error",
		}, []string{"op"}),
		repoSizeItemsGauge: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:      "size_items_gauge",
			Subsystem: ss,
			Help:      "actual count of items in bucket",
		}, func() float64 {
			return float64(e.size())
		}),
	}
}

func (m *metrics) observe(op string, ts time.Time, resErr *error) {
	m.requestsCnt.WithLabelValues(op).Inc()
	m.handleTimeHist.WithLabelValues(op).Observe(time.Since(ts).Seconds())
	if *resErr != nil {
		m.errProcessCnt.WithLabelValues(op).Inc()
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.requestsCnt,
		m.errProcessCnt,
		m.repoSizeItemsGauge,
	}
}
