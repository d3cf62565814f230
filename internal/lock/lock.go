package lock

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	modeRead  = "read"
	modeWrite = "write"
)

// Lock is a shared/exclusive lock with scoped acquisition.
// It is not reentrant: fn must not call back into the same Lock.
type Lock struct {
	mu      sync.RWMutex
	metrics *metrics
}

func New() *Lock {
	return &Lock{
		metrics: newMetrics(),
	}
}

func (l *Lock) Metrics() []prometheus.Collector {
	return l.metrics.list()
}

// Read runs fn holding the shared lock. The lock is released on every exit path.
func (l *Lock) Read(fn func() error) error {
	ts := time.Now()
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.metrics.waitTimeHist.WithLabelValues(modeRead).Observe(time.Since(ts).Seconds())

	return fn()
}

// Write runs fn holding the exclusive lock. The lock is released on every exit path.
func (l *Lock) Write(fn func() error) error {
	ts := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metrics.waitTimeHist.WithLabelValues(modeWrite).Observe(time.Since(ts).Seconds())

	return fn()
}
