// Package modem runs an AT command interpreter on one end of a
// serial-like channel: the device side. It reads command lines from a
// Transport, feeds them through an at.Dispatcher and writes the
// rendered responses back, so that whatever sits on the other end of
// the channel talks to it like to a real modem.
package modem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/collab-project/atcmd/at"
)

// Modem binds a Dispatcher to a Transport. One Modem serves exactly one
// channel; run several Modem instances for several attached hosts, each
// with its own (or a shared read-only) Registry.
type Modem struct {
	transport  Transport
	dispatcher *at.Dispatcher
	logger     *zap.Logger
	maxLineLen int

	// echo mirrors received command lines back to the host (ATE1).
	echo atomic.Bool

	// writeMu serializes response writes against Notify, so an
	// unsolicited line never tears a response apart.
	writeMu sync.Mutex

	mu          sync.Mutex
	closed      bool
	loopRunning bool

	// urcChan surfaces inbound lines that were not command lines.
	urcChan chan string
}

// New opens the transport via the configured dialer and prepares the
// modem. Loop must be called afterwards to start serving the channel.
func New(ctx context.Context, config Config) (*Modem, error) {
	if config.dialer == nil {
		return nil, ErrNoDialer
	}
	config.setDefaults()

	transport, err := config.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}

	m := &Modem{
		transport:  transport,
		logger:     config.logger,
		maxLineLen: config.maxLineLen,
		urcChan:    make(chan string, 100), // buffered so a slow consumer never stalls the loop
	}
	m.echo.Store(config.echo)

	opts := config.dispatchOpts
	userSink := opts.Unsolicited
	opts.Unsolicited = func(line string) {
		if userSink != nil {
			userSink(line)
		}
		select {
		case m.urcChan <- line:
		default:
			m.logger.Warn("dropping unsolicited line, channel full", zap.String("line", line))
		}
	}
	m.dispatcher = at.NewDispatcher(config.registry, opts)

	return m, nil
}

// Dispatcher returns the dispatcher serving this channel.
func (m *Modem) Dispatcher() *at.Dispatcher {
	return m.dispatcher
}

// SetEcho switches command echo on or off. Safe to call from handlers
// while the loop is running (the ATE command does exactly that).
func (m *Modem) SetEcho(on bool) {
	m.echo.Store(on)
}

// Loop is the main event loop. It must be called exactly once after
// New. The loop is the only goroutine reading from the transport; it
// scans command lines, dispatches each one fully and writes the
// response before reading the next, keeping the channel half-duplex.
//
// Loop runs until the context is cancelled, the transport reaches EOF,
// or a read error occurs.
func (m *Modem) Loop(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrAlreadyClosed
	}
	if m.loopRunning {
		m.mu.Unlock()
		return ErrLoopRunning
	}
	m.loopRunning = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.loopRunning = false
		m.mu.Unlock()
	}()

	scanner := bufio.NewScanner(m.transport)
	scanner.Split(at.CommandSplitter)
	scanner.Buffer(nil, m.maxLineLen)

	// Channels for lines and errors from the scanner goroutine
	lines := make(chan string, 10)
	scanErrs := make(chan error, 1)

	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				err = ErrLineTooLong
			}
			select {
			case scanErrs <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				// The scanner goroutine reports its error before
				// closing lines, so check it first.
				select {
				case err := <-scanErrs:
					m.logger.Error("transport read failed", zap.Error(err))
					return fmt.Errorf("modem: read: %w", err)
				default:
				}
				return io.EOF
			}
			if err := m.serve(ctx, line); err != nil {
				return err
			}

		case err := <-scanErrs:
			m.logger.Error("transport read failed", zap.Error(err))
			return fmt.Errorf("modem: read: %w", err)
		}
	}
}

// serve dispatches one inbound line and writes its response segments.
func (m *Modem) serve(ctx context.Context, line string) error {
	if m.echo.Load() && line != "" {
		if err := m.write([]byte(line + at.CRLF)); err != nil {
			return fmt.Errorf("modem: echo: %w", err)
		}
	}

	segments := m.dispatcher.Handle(ctx, line)
	if len(segments) == 0 {
		// Blank or unsolicited line; nothing goes back to the host.
		return nil
	}

	for _, seg := range segments {
		if seg.OK() {
			continue
		}
		m.logger.Debug("command failed",
			zap.String("line", line),
			zap.String("status", seg.Status),
			zap.Error(seg.Cause),
		)
	}

	if err := m.write([]byte(at.RenderAll(segments))); err != nil {
		return fmt.Errorf("modem: write response: %w", err)
	}
	return nil
}

// Notify emits an unsolicited result code ("+CREG: 1") to the host.
// The line is framed with CRLF pairs and serialized against in-flight
// response writes.
func (m *Modem) Notify(line string) error {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return ErrAlreadyClosed
	}

	m.logger.Debug("emitting unsolicited line", zap.String("line", line))
	return m.write([]byte(at.Notification(line)))
}

// Unsolicited returns a read-only channel of inbound lines that were
// not command lines. The channel is buffered and drops when full.
func (m *Modem) Unsolicited() <-chan string {
	return m.urcChan
}

// Close shuts the modem down and closes the transport. After Close the
// modem cannot be reused.
func (m *Modem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrAlreadyClosed
	}
	m.closed = true

	if m.transport != nil {
		return m.transport.Close()
	}
	return nil
}

func (m *Modem) write(p []byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	_, err := m.transport.Write(p)
	return err
}
