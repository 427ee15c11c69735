package huawei

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection classifies failures of the transport or session.
	ErrConnection = errors.New("connection error")
	// ErrRead classifies failures to obtain or decode a register over a live session.
	ErrRead = errors.New("read error")

	ErrUnknownRegister = errors.New("unknown register")
)

type ConnectionError struct {
	Register string
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Register == "" {
		return fmt.Sprintf("connection error: %v", e.Err)
	}
	return fmt.Sprintf("connection error reading %q: %v", e.Register, e.Err)
}

func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}

type ReadError struct {
	Register string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("could not read %q: %v", e.Register, e.Err)
}

func (e *ReadError) Unwrap() []error {
	return []error{ErrRead, e.Err}
}
