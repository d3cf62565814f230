package kvrepo

import (
	"errors"
	"fmt"

	"github.com/horockey/go-toolbox/options"
	"github.com/rs/zerolog"
)

// Sets explicit key serializer.
// Default is resolved from the registry by K.
func WithKeySerializer[K, V any](s Serializer[K]) options.Option[createRepositoryParams[K, V]] {
	return func(target *createRepositoryParams[K, V]) error {
		if s == nil {
			return errors.New("got nil key serializer")
		}
		target.keySerializer = s
		return nil
	}
}

// Sets explicit value serializer.
// Default is resolved from the registry by V.
func WithValueSerializer[K, V any](s Serializer[V]) options.Option[createRepositoryParams[K, V]] {
	return func(target *createRepositoryParams[K, V]) error {
		if s == nil {
			return errors.New("got nil value serializer")
		}
		target.valueSerializer = s
		return nil
	}
}

// Sets custom serializer registry.
// Default holds serializers for strings, []byte, bool, integers and floats.
func WithRegistry[K, V any](reg *Registry) options.Option[createRepositoryParams[K, V]] {
	return func(target *createRepositoryParams[K, V]) error {
		if reg == nil {
			return errors.New("got nil registry")
		}
		target.registry = reg
		return nil
	}
}

// Sets worker pool size.
// Default is 5.
func WithWorkersCount[K, V any](n int) options.Option[createRepositoryParams[K, V]] {
	return func(target *createRepositoryParams[K, V]) error {
		if n <= 0 {
			return fmt.Errorf("workers count must be positive, got: %d", n)
		}
		target.workers = n
		return nil
	}
}

// Sets how many submitted operations may wait for a worker
// before submission blocks.
// Default is 1024.
func WithQueueSize[K, V any](n int) options.Option[createRepositoryParams[K, V]] {
	return func(target *createRepositoryParams[K, V]) error {
		if n < 0 {
			return fmt.Errorf("queue size must not be negative, got: %d", n)
		}
		target.queueSize = n
		return nil
	}
}

// Sets custom logger.
// Default is stdout logger.
func WithLogger[K, V any](l zerolog.Logger) options.Option[createRepositoryParams[K, V]] {
	return func(target *createRepositoryParams[K, V]) error {
		target.logger = l
		return nil
	}
}
