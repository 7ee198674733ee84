package at

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedCommand is returned when a command line is structurally
	// unparseable: an empty command name (e.g. "AT="), a character that
	// cannot start a command, or an "A/" with no previous line to repeat.
	ErrMalformedCommand = errors.New("at: malformed command")

	// ErrUnterminatedQuote is returned when a double quote is opened but
	// never closed before the end of the line.
	//
	// On a multi-command line this also makes the command boundary
	// undecidable, so the remainder of the line is rejected as a whole.
	ErrUnterminatedQuote = errors.New("at: unterminated quote")

	// ErrUnexpectedParameters is returned when a TEST or READ command
	// carries a parameter tail ("AT+CSQ?1").
	ErrUnexpectedParameters = errors.New("at: unexpected parameters")

	// ErrMissingParameters is returned for a bare "=" with nothing after
	// it when the Dispatcher runs with StrictEmptySet enabled.
	ErrMissingParameters = errors.New("at: missing parameters")

	// ErrNotFound is returned when no handler is registered for the
	// command name.
	ErrNotFound = errors.New("at: no handler registered")

	// ErrCapabilityMismatch is returned when a handler exists for the
	// command name but does not implement the resolved command type.
	ErrCapabilityMismatch = errors.New("at: command type not supported by handler")

	// ErrDuplicateHandler is returned by Registry.Register when the name
	// is already taken. Overwriting requires an explicit Replace call.
	ErrDuplicateHandler = errors.New("at: handler already registered")

	// ErrNoCapabilities is returned by Registry.Register when the handler
	// set implements none of the four command types.
	ErrNoCapabilities = errors.New("at: handler implements no command type")
)

// CMEError is a handler-raised domain failure carrying a numeric code from
// the +CME ERROR space (3GPP TS 27.007 §9.2). The Dispatcher renders it as
// "+CME ERROR: <code>" instead of a bare ERROR.
type CMEError struct {
	Code    int
	Message string
}

func (e *CMEError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %d", CmeError, e.Code)
	}
	return fmt.Sprintf("%s %d (%s)", CmeError, e.Code, e.Message)
}

// Common CME codes used by the reference command set.
const (
	CMEOperationNotAllowed   = 3
	CMEOperationNotSupported = 4
	CMESIMPINRequired        = 11
	CMEIncorrectPassword     = 16
	CMEMemoryFailure         = 23
	CMEInvalidIndex          = 21
)
