package model

// Serializer converts T to bytes and back.
// Encoding must be deterministic: equal values give equal bytes.
type Serializer[T any] interface {
	Encode(T) ([]byte, error)
	Decode([]byte) (T, error)
}

type SerializerFuncs[T any] struct {
	EncodeFunc func(T) ([]byte, error)
	DecodeFunc func([]byte) (T, error)
}

func (sf SerializerFuncs[T]) Encode(v T) ([]byte, error) {
	return sf.EncodeFunc(v)
}

func (sf SerializerFuncs[T]) Decode(data []byte) (T, error) {
	return sf.DecodeFunc(data)
}
