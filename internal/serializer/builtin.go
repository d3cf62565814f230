package serializer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/horockey/kvrepo/internal/model"
	"golang.org/x/exp/constraints"
)

const fixedWidth = 8

var (
	_ model.Serializer[string]  = String[string]{}
	_ model.Serializer[[]byte]  = Bytes{}
	_ model.Serializer[bool]    = Bool{}
	_ model.Serializer[int64]   = Int[int64]{}
	_ model.Serializer[uint64]  = Uint[uint64]{}
	_ model.Serializer[float64] = Float[float64]{}
)

var (
	ErrInvalidLength = errors.New("invalid length")
	ErrOverflow      = errors.New("value overflows target type")
)

// String stores the raw string bytes.
type String[T ~string] struct{}

func (String[T]) Encode(v T) ([]byte, error) {
	return []byte(v), nil
}

func (String[T]) Decode(data []byte) (T, error) {
	return T(data), nil
}

// Bytes stores a copy of the slice.
type Bytes struct{}

func (Bytes) Encode(v []byte) ([]byte, error) {
	if v == nil {
		return []byte{}, nil
	}
	return slices.Clone(v), nil
}

func (Bytes) Decode(data []byte) ([]byte, error) {
	return append([]byte{}, data...), nil
}

type Bool struct{}

func (Bool) Encode(v bool) ([]byte, error) {
	if v {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

func (Bool) Decode(data []byte) (bool, error) {
	if len(data) != 1 {
		return false, fmt.Errorf("%w: want 1 byte, got %d", ErrInvalidLength, len(data))
	}
	switch data[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("unexpected bool byte %#x", data[0])
	}
}

// Int stores signed integers as 8 big-endian bytes with the sign bit flipped,
// so byte order matches numeric order.
type Int[T constraints.Signed] struct{}

func (Int[T]) Encode(v T) ([]byte, error) {
	return binary.BigEndian.AppendUint64(nil, uint64(int64(v))^(1<<63)), nil //nolint: gosec
}

func (Int[T]) Decode(data []byte) (T, error) {
	if len(data) != fixedWidth {
		return 0, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidLength, fixedWidth, len(data))
	}

	raw := int64(binary.BigEndian.Uint64(data) ^ (1 << 63)) //nolint: gosec
	res := T(raw)
	if int64(res) != raw {
		return 0, fmt.Errorf("%w: %d", ErrOverflow, raw)
	}
	return res, nil
}

// Uint stores unsigned integers as 8 big-endian bytes.
type Uint[T constraints.Unsigned] struct{}

func (Uint[T]) Encode(v T) ([]byte, error) {
	return binary.BigEndian.AppendUint64(nil, uint64(v)), nil
}

func (Uint[T]) Decode(data []byte) (T, error) {
	if len(data) != fixedWidth {
		return 0, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidLength, fixedWidth, len(data))
	}

	raw := binary.BigEndian.Uint64(data)
	res := T(raw)
	if uint64(res) != raw {
		return 0, fmt.Errorf("%w: %d", ErrOverflow, raw)
	}
	return res, nil
}

// Float stores IEEE-754 float64 bits transformed to sort like numbers:
// negatives get all bits inverted, positives get the sign bit set.
type Float[T constraints.Float] struct{}

func (Float[T]) Encode(v T) ([]byte, error) {
	bits := math.Float64bits(float64(v))
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	return binary.BigEndian.AppendUint64(nil, bits), nil
}

func (Float[T]) Decode(data []byte) (T, error) {
	if len(data) != fixedWidth {
		return 0, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidLength, fixedWidth, len(data))
	}

	bits := binary.BigEndian.Uint64(data)
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return T(math.Float64frombits(bits)), nil
}
