package kvrepo

import "github.com/horockey/kvrepo/internal/model"

type (
	SerializationError   = model.SerializationError
	DeserializationError = model.DeserializationError
	EngineError          = model.EngineError
	PanicError           = model.PanicError
)

var (
	ErrNoSerializer = model.ErrNoSerializer
	ErrPoolClosed   = model.ErrPoolClosed
	ErrEmptyKey     = model.ErrEmptyKey
)
