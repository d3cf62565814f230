package kvrepo

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/kvrepo/internal/model"
	"github.com/horockey/kvrepo/internal/processor"
	"github.com/horockey/kvrepo/internal/scheduler"
	"github.com/horockey/kvrepo/internal/serializer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Repository is an asynchronous typed repository over an Engine.
// Every operation runs as one task on the repository's worker pool
// and reports its outcome through the returned Future.
type Repository[K, V any] struct {
	proc   *processor.Processor[K, V]
	pool   *scheduler.Pool
	engine Engine
}

type createRepositoryParams[K, V any] struct {
	keySerializer   Serializer[K]
	valueSerializer Serializer[V]
	registry        *serializer.Registry
	workers         int
	queueSize       int
	logger          zerolog.Logger
}

func defaultCreateRepositoryParams[K, V any]() createRepositoryParams[K, V] {
	return createRepositoryParams[K, V]{
		workers:   5,    //nolint: mnd
		queueSize: 1024, //nolint: mnd
		logger: zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().
			Timestamp().
			Str("scope", "kvrepo").
			Logger(),
	}
}

// New creates a repository over engine. The engine must outlive the repository.
// Serializers not set explicitly are resolved once here, from the registry.
func New[K, V any](
	engine Engine,
	opts ...options.Option[createRepositoryParams[K, V]],
) (*Repository[K, V], error) {
	if engine == nil {
		return nil, errors.New("got nil engine")
	}

	params := defaultCreateRepositoryParams[K, V]()
	if err := options.ApplyOptions(&params, opts...); err != nil {
		return nil, fmt.Errorf("applying opts: %w", err)
	}

	if params.registry == nil {
		params.registry = serializer.Default()
	}

	if params.keySerializer == nil {
		s, err := serializer.Resolve[K](params.registry)
		if err != nil {
			return nil, fmt.Errorf("resolving key serializer: %w", err)
		}
		params.keySerializer = s
	}

	if params.valueSerializer == nil {
		s, err := serializer.Resolve[V](params.registry)
		if err != nil {
			return nil, fmt.Errorf("resolving value serializer: %w", err)
		}
		params.valueSerializer = s
	}

	pool, err := scheduler.New(
		params.workers,
		params.queueSize,
		params.logger.With().Str("subscope", "scheduler").Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	return &Repository[K, V]{
		proc: processor.New(
			engine,
			params.keySerializer,
			params.valueSerializer,
			params.logger.With().Str("subscope", "processor").Logger(),
		),
		pool:   pool,
		engine: engine,
	}, nil
}

// Save creates or overwrites the entry for key.
func (repo *Repository[K, V]) Save(key K, value V) *Future[struct{}] {
	return scheduler.Submit(repo.pool, func() (struct{}, error) {
		return struct{}{}, repo.proc.Save(key, value)
	})
}

// FindByKey resolves with an empty Optional when key is absent.
// Failures resolve with an error, never with an empty Optional.
func (repo *Repository[K, V]) FindByKey(key K) *Future[Optional[V]] {
	return scheduler.Submit(repo.pool, func() (Optional[V], error) {
		return repo.proc.FindByKey(key)
	})
}

// FindAll resolves with every value in ascending encoded key order.
// One undecodable entry fails the whole call with DeserializationError.
func (repo *Repository[K, V]) FindAll() *Future[[]V] {
	return scheduler.Submit(repo.pool, repo.proc.FindAll)
}

// DeleteByKey removes key. Removing an absent key succeeds.
func (repo *Repository[K, V]) DeleteByKey(key K) *Future[struct{}] {
	return scheduler.Submit(repo.pool, func() (struct{}, error) {
		return struct{}{}, repo.proc.DeleteByKey(key)
	})
}

// DeleteAll removes every entry atomically with respect to other writers.
func (repo *Repository[K, V]) DeleteAll() *Future[struct{}] {
	return scheduler.Submit(repo.pool, func() (struct{}, error) {
		return struct{}{}, repo.proc.DeleteAll()
	})
}

// Sync returns the blocking variant of the repository.
// It shares the lock with the async operations.
func (repo *Repository[K, V]) Sync() *Processor[K, V] {
	return repo.proc
}

// Close stops accepting operations and waits for the submitted ones.
// The engine is left open. Operations submitted afterwards resolve with ErrPoolClosed.
func (repo *Repository[K, V]) Close() {
	repo.pool.Close()
}

func (repo *Repository[K, V]) Metrics() []prometheus.Collector {
	res := slices.Concat(
		repo.proc.Metrics(),
		repo.pool.Metrics(),
	)
	if mp, ok := repo.engine.(model.MetricsProvider); ok {
		res = append(res, mp.Metrics()...)
	}
	return res
}
