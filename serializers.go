package kvrepo

import (
	"github.com/horockey/kvrepo/internal/serializer"
	"golang.org/x/exp/constraints"
	"google.golang.org/protobuf/proto"
)

// Built-in serializers. Numeric ones keep byte order equal to numeric order.
type (
	StringSerializer[T ~string]            = serializer.String[T]
	BytesSerializer                        = serializer.Bytes
	BoolSerializer                         = serializer.Bool
	IntSerializer[T constraints.Signed]    = serializer.Int[T]
	UintSerializer[T constraints.Unsigned] = serializer.Uint[T]
	FloatSerializer[T constraints.Float]   = serializer.Float[T]
	GobSerializer[T any]                   = serializer.Gob[T]
	JSONSerializer[T any]                  = serializer.JSON[T]
	ProtoSerializer[T proto.Message]       = serializer.Proto[T]
)

func NewProtoSerializer[T proto.Message](newMsg func() T) (*ProtoSerializer[T], error) {
	return serializer.NewProto(newMsg)
}
