package serializer

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/horockey/kvrepo/internal/model"
)

// Registry maps static types to serializers.
type Registry struct {
	mu          sync.RWMutex
	serializers map[reflect.Type]any
}

func NewRegistry() *Registry {
	return &Registry{
		serializers: map[reflect.Type]any{},
	}
}

// Default returns a new registry holding serializers for
// string, []byte, bool and every predeclared integer and float type.
func Default() *Registry {
	reg := NewRegistry()

	mustRegister(reg, model.Serializer[string](String[string]{}))
	mustRegister(reg, model.Serializer[[]byte](Bytes{}))
	mustRegister(reg, model.Serializer[bool](Bool{}))

	mustRegister(reg, model.Serializer[int](Int[int]{}))
	mustRegister(reg, model.Serializer[int8](Int[int8]{}))
	mustRegister(reg, model.Serializer[int16](Int[int16]{}))
	mustRegister(reg, model.Serializer[int32](Int[int32]{}))
	mustRegister(reg, model.Serializer[int64](Int[int64]{}))

	mustRegister(reg, model.Serializer[uint](Uint[uint]{}))
	mustRegister(reg, model.Serializer[uint8](Uint[uint8]{}))
	mustRegister(reg, model.Serializer[uint16](Uint[uint16]{}))
	mustRegister(reg, model.Serializer[uint32](Uint[uint32]{}))
	mustRegister(reg, model.Serializer[uint64](Uint[uint64]{}))

	mustRegister(reg, model.Serializer[float32](Float[float32]{}))
	mustRegister(reg, model.Serializer[float64](Float[float64]{}))

	return reg
}

// Register binds s to T, replacing any previous binding.
func Register[T any](reg *Registry, s model.Serializer[T]) error {
	if reg == nil {
		return errors.New("got nil registry")
	}
	if s == nil {
		return fmt.Errorf("got nil serializer for %s", reflect.TypeFor[T]())
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.serializers[reflect.TypeFor[T]()] = s
	return nil
}

// Resolve returns the serializer bound to T.
func Resolve[T any](reg *Registry) (model.Serializer[T], error) {
	typ := reflect.TypeFor[T]()
	if reg == nil {
		return nil, fmt.Errorf("%w for %s: got nil registry", model.ErrNoSerializer, typ)
	}

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	s, found := reg.serializers[typ]
	if !found {
		return nil, fmt.Errorf("%w for %s", model.ErrNoSerializer, typ)
	}

	return s.(model.Serializer[T]), nil //nolint: forcetypeassert
}

func mustRegister[T any](reg *Registry, s model.Serializer[T]) {
	if err := Register(reg, s); err != nil {
		panic(err)
	}
}

// TypeName is used to label serialization errors.
func TypeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
