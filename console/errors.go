package console

import "errors"

var (
	// ErrInvalidArgument is returned for empty text or prompt
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState is returned when an operation conflicts with an active read
	ErrInvalidState = errors.New("invalid state")
	// ErrInterrupted is returned by ReadLine when an interrupt key abandons the line
	ErrInterrupted = errors.New("read interrupted")
)
