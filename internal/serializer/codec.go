package serializer

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/horockey/kvrepo/internal/model"
	"google.golang.org/protobuf/proto"
)

var (
	_ model.Serializer[any] = Gob[any]{}
	_ model.Serializer[any] = JSON[any]{}
)

// Gob encodes values with encoding/gob.
// Maps are encoded in random order, so Gob must not be used for keys holding maps.
type Gob[T any] struct{}

func (Gob[T]) Encode(v T) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := gob.
		NewEncoder(buf).
		Encode(&v); err != nil {
		return nil, fmt.Errorf("encoding gob: %w", err)
	}
	return buf.Bytes(), nil
}

func (Gob[T]) Decode(data []byte) (T, error) {
	var res T
	if err := gob.
		NewDecoder(bytes.NewBuffer(data)).
		Decode(&res); err != nil {
		return *new(T), fmt.Errorf("decoding gob: %w", err)
	}
	return res, nil
}

// JSON encodes values with encoding/json. Map keys are sorted, so output is deterministic.
type JSON[T any] struct{}

func (JSON[T]) Encode(v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling json: %w", err)
	}
	return data, nil
}

func (JSON[T]) Decode(data []byte) (T, error) {
	var res T
	if err := json.Unmarshal(data, &res); err != nil {
		return *new(T), fmt.Errorf("unmarshaling json: %w", err)
	}
	return res, nil
}

// Proto encodes protobuf messages with deterministic marshaling.
type Proto[T proto.Message] struct {
	newMsg func() T
}

func NewProto[T proto.Message](newMsg func() T) (*Proto[T], error) {
	if newMsg == nil {
		return nil, errors.New("got nil message constructor")
	}
	return &Proto[T]{newMsg: newMsg}, nil
}

func (p *Proto[T]) Encode(v T) ([]byte, error) {
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling proto: %w", err)
	}
	return data, nil
}

func (p *Proto[T]) Decode(data []byte) (T, error) {
	msg := p.newMsg()
	if err := proto.Unmarshal(data, msg); err != nil {
		return *new(T), fmt.Errorf("unmarshaling proto: %w", err)
	}
	return msg, nil
}
