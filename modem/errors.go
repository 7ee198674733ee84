package modem

import "errors"

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order
	// to reach the host-facing channel the modem serves.
	ErrNoDialer = errors.New("modem: no dialer configured")

	// ErrAlreadyClosed is returned when an operation is attempted on a
	// Modem that has been closed.
	ErrAlreadyClosed = errors.New("modem: already closed")

	// ErrLoopRunning is returned when Loop is called while a previous
	// Loop invocation is still active.
	ErrLoopRunning = errors.New("modem: loop already running")

	// ErrLineTooLong is returned when an inbound command line exceeds the
	// maximum allowed length.
	//
	// This typically indicates malformed input, unexpected binary data,
	// or a protocol framing error.
	ErrLineTooLong = errors.New("modem: command line too long")
)
