package at

import (
	"fmt"
	"strings"
)

// Response is the outbound counterpart of a Command: zero or more
// informational lines followed by exactly one final result code.
//
// Cause records why a failing Response failed (one of the package error
// values, or the handler's own error). It is diagnostic only and never
// rendered on the wire.
type Response struct {
	Info   []string
	Status string
	Cause  error
}

// OKResponse builds a success Response carrying the given informational
// lines.
func OKResponse(info ...string) Response {
	return Response{Info: info, Status: OK}
}

// ErrorResponse builds a plain ERROR Response with the given cause.
func ErrorResponse(cause error) Response {
	return Response{Status: ERROR, Cause: cause}
}

// CMEResponse builds an extended-error Response ("+CME ERROR: <code>").
func CMEResponse(code int, cause error) Response {
	return Response{
		Status: fmt.Sprintf("%s %d", CmeError, code),
		Cause:  cause,
	}
}

// OK reports whether the final result code is OK.
func (r Response) OK() bool {
	return r.Status == OK
}

// Render produces the canonical wire form of the Response: each
// informational line and the final result code wrapped in CRLF pairs.
//
//	<CR><LF>+CSQ: 15,99<CR><LF>
//	<CR><LF>OK<CR><LF>
func (r Response) Render() string {
	var b strings.Builder
	for _, line := range r.Info {
		b.WriteString(CRLF)
		b.WriteString(line)
		b.WriteString(CRLF)
	}
	status := r.Status
	if status == "" {
		status = OK
	}
	b.WriteString(CRLF)
	b.WriteString(status)
	b.WriteString(CRLF)
	return b.String()
}

// RenderAll concatenates the wire forms of the per-command Response
// segments of one multi-command line, in dispatch order.
func RenderAll(segments []Response) string {
	var b strings.Builder
	for _, r := range segments {
		b.WriteString(r.Render())
	}
	return b.String()
}

// Notification renders an unsolicited line ("+CREG: 1") for emission to
// the host between command exchanges.
func Notification(line string) string {
	return CRLF + line + CRLF
}
