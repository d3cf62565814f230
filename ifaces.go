package kvrepo

import (
	"github.com/horockey/kvrepo/internal/model"
	"github.com/horockey/kvrepo/internal/processor"
	"github.com/horockey/kvrepo/internal/scheduler"
	"github.com/horockey/kvrepo/internal/serializer"
)

type (
	Engine                 = model.Engine
	Iterator               = model.Iterator
	Serializer[T any]      = model.Serializer[T]
	SerializerFuncs[T any] = model.SerializerFuncs[T]
	Optional[V any]        = model.Optional[V]
	Future[T any]          = scheduler.Future[T]
	Processor[K, V any]    = processor.Processor[K, V]
	Registry               = serializer.Registry
)

func NewRegistry() *Registry {
	return serializer.NewRegistry()
}

// DefaultRegistry returns a new registry holding the built-in serializers.
func DefaultRegistry() *Registry {
	return serializer.Default()
}

// Register binds s to T in reg, replacing any previous binding.
func Register[T any](reg *Registry, s Serializer[T]) error {
	return serializer.Register(reg, s)
}

func Some[V any](v V) Optional[V] {
	return model.Some(v)
}

func None[V any]() Optional[V] {
	return model.None[V]()
}
