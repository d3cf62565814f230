package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/horockey/kvrepo/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Pool runs submitted tasks on a fixed number of workers.
// Tasks are independent, no ordering between them is guaranteed.
type Pool struct {
	tasks   chan func()
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	logger  zerolog.Logger
	metrics *metrics
}

func New(workers int, queueSize int, logger zerolog.Logger) (*Pool, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("workers count must be positive, got: %d", workers)
	}
	if queueSize < 0 {
		return nil, fmt.Errorf("queue size must not be negative, got: %d", queueSize)
	}

	p := Pool{
		tasks:   make(chan func(), queueSize),
		logger:  logger,
		metrics: newMetrics(),
	}

	p.wg.Add(workers)
	for range workers {
		go p.work()
	}

	return &p, nil
}

func (p *Pool) Metrics() []prometheus.Collector {
	return p.metrics.list()
}

// Submit schedules task on p. It blocks only while the queue is full.
// If p is closed, the returned future resolves with model.ErrPoolClosed.
func Submit[T any](p *Pool, task func() (T, error)) *Future[T] {
	fut := newFuture[T]()

	run := func() {
		defer func(ts time.Time) {
			p.metrics.runningGauge.Dec()
			p.metrics.taskTimeHist.Observe(time.Since(ts).Seconds())
			p.metrics.completedCnt.Inc()

			if rec := recover(); rec != nil {
				p.logger.
					Error().
					Err(model.PanicError{Value: rec}).
					Msg("task panicked")
				fut.resolve(*new(T), model.PanicError{Value: rec})
			}
		}(time.Now())

		p.metrics.queuedGauge.Dec()
		p.metrics.runningGauge.Inc()

		fut.resolve(task())
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		fut.resolve(*new(T), model.ErrPoolClosed)
		return fut
	}

	p.metrics.queuedGauge.Inc()
	p.tasks <- run

	return fut
}

// Close stops accepting tasks, runs everything already queued and waits for workers.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}
