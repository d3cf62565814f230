package model

import (
	"errors"
	"fmt"
)

var (
	_ error = SerializationError{}
	_ error = DeserializationError{}
	_ error = EngineError{}
	_ error = PanicError{}
)

var (
	ErrNoSerializer = errors.New("no serializer registered")
	ErrPoolClosed   = errors.New("worker pool is closed")
	ErrEmptyKey     = errors.New("encoded key is empty")
)

// SerializationError means a value could not be encoded.
type SerializationError struct {
	Type string
	Err  error
}

func (err SerializationError) Error() string {
	return fmt.Sprintf("serializing %s: %v", err.Type, err.Err)
}

func (err SerializationError) Unwrap() error {
	return err.Err
}

// DeserializationError means stored bytes could not be decoded.
type DeserializationError struct {
	Type string
	Err  error
}

func (err DeserializationError) Error() string {
	return fmt.Sprintf("deserializing %s: %v", err.Type, err.Err)
}

func (err DeserializationError) Unwrap() error {
	return err.Err
}

// EngineError wraps a failed storage engine call.
type EngineError struct {
	Op  string
	Err error
}

func (err EngineError) Error() string {
	return fmt.Sprintf("engine %s: %v", err.Op, err.Err)
}

func (err EngineError) Unwrap() error {
	return err.Err
}

// PanicError carries a value recovered from a panicking task.
type PanicError struct {
	Value any
}

func (err PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", err.Value)
}
