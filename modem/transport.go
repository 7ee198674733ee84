package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=modem

// Transport represents an established, bidirectional byte stream to the
// host controlling this modem.
//
// A Transport is assumed to be already connected and ready for use. It
// provides the low-level I/O primitives needed to receive AT command
// lines and emit responses. Typical implementations include serial
// ports, TCP connections to terminal bridges, or in-memory fakes used
// for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to the host channel.
//
// Dialer abstracts how the channel is created (serial port, TCP bridge,
// test double) and is intended to be used during modem construction
// only. Once a Transport is obtained, the Dialer is no longer needed.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may perform
	// blocking operations and should respect cancellation and deadlines
	// provided by the context.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens the modem's channel on a local serial port using
// go.bug.st/serial.
type SerialDialer struct {
	// PortName is the serial device path, e.g. "/dev/ttyUSB0".
	PortName string
	// BaudRate is used when Mode is nil. Zero means 115200.
	BaudRate int
	// Mode overrides the full port configuration when set.
	Mode *serial.Mode
}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if d.PortName == "" {
		return nil, errors.New("modem: serial port name is required")
	}
	if ctx == nil {
		return nil, errors.New("modem: context is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud == 0 {
			baud = 115200
		}
		mode = &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("modem: open serial port %s: %w", d.PortName, err)
	}
	return port, nil
}

// TCPDialer connects the modem's channel to a TCP endpoint, typically a
// socat/ser2net bridge or an emulator during development.
type TCPDialer struct {
	// Address is the host:port to connect to.
	Address string
}

func (d TCPDialer) Dial(ctx context.Context) (Transport, error) {
	if d.Address == "" {
		return nil, errors.New("modem: tcp address is required")
	}
	if ctx == nil {
		return nil, errors.New("modem: context is nil")
	}

	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", d.Address)
	if err != nil {
		return nil, fmt.Errorf("modem: dial %s: %w", d.Address, err)
	}
	return conn, nil
}
