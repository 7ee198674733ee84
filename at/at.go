// Package at implements parsing, dispatch and encoding of AT (Hayes)
// command lines, based on the subset of ITU-T V.250 used by cellular
// modules (see also 3GPP TS 27.007).
//
// The package is the device side of the protocol: it turns a raw command
// line received from a host ("AT+CSQ=1,2") into structured Commands,
// routes them through a Registry of handlers, and renders the handler
// results back into the exact response framing the protocol expects.
package at

const (
	// Terminal Control
	CRLF   = "\r\n"
	Prompt = "> "
	CtrlZ  = "\x1a"

	// Response Codes
	OK         = "OK"
	ERROR      = "ERROR"
	NoCarrier  = "NO CARRIER"
	NoDialtone = "NO DIALTONE"
	Busy       = "BUSY"
	NoAnswer   = "NO ANSWER"
	CmeError   = "+CME ERROR:"
	CmsError   = "+CMS ERROR:"

	// URCs (Unsolicited Result Codes)
	UrcNewMsg         = "+CMTI:"
	UrcMessageReport  = "+CDSI:"
	UrcSignalStrength = "+CSQ:"
	UrcNetworkReg     = "+CREG:"
	UrcCall           = "RING"
)

// CommandType identifies which of the four AT command forms a line used.
type CommandType int

const (
	// Execute runs the command without a marker ("AT+CSQ", "ATI").
	Execute CommandType = iota
	// Read queries the current value ("AT+CSQ?").
	Read
	// Set assigns new parameter values ("AT+CSQ=1,2").
	Set
	// Test queries the supported value ranges ("AT+CSQ=?").
	Test
)

// Marker returns the suffix for the command type, as it appears on the
// wire after the command name.
func (t CommandType) Marker() string {
	switch t {
	case Read:
		return "?"
	case Set:
		return "="
	case Test:
		return "=?"
	default:
		return ""
	}
}

func (t CommandType) String() string {
	switch t {
	case Read:
		return "READ"
	case Set:
		return "SET"
	case Test:
		return "TEST"
	default:
		return "EXECUTE"
	}
}

type ResponseType int

const (
	TypeFinal  ResponseType = iota // OK, ERROR
	TypeURC                        // Asynchronous notifications
	TypeData                       // Intermediate command output (+CSQ: ...)
	TypePrompt                     // SMS input prompt
)
