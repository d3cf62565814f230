package scheduler

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	taskTimeHist prometheus.Histogram
	completedCnt prometheus.Counter
	queuedGauge  prometheus.Gauge
	runningGauge prometheus.Gauge
}

func newMetrics() *metrics {
	const ss = "scheduler"
	return &metrics{
		taskTimeHist: prometheus.NewHistogram(*prometheus_helpers.NewHistOpts(
			"task_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Task execution time distribution"),
		)),
		completedCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "completed_tasks_cnt",
			Subsystem: ss,
			Help:      "Count of finished tasks",
		}),
		queuedGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "queued_tasks_gauge",
			Subsystem: ss,
			Help:      "Tasks waiting for a worker",
		}),
		runningGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "running_tasks_gauge",
			Subsystem: ss,
			Help:      "Tasks being executed",
		}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.taskTimeHist,
		m.completedCnt,
		m.queuedGauge,
		m.runningGauge,
	}
}
