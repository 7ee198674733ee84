package modem

import (
	"io"
	"sync"
)

// TestTransport is a test helper that simulates a blocking transport
// using channels. This is needed because the Loop's scanner goroutine
// continuously reads from the transport, and we need reads to block
// until data is available (like a real serial port would).
type TestTransport struct {
	mu        sync.Mutex
	readChan  chan []byte
	writeChan chan []byte
	closed    bool
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		readChan:  make(chan []byte, 10),
		writeChan: make(chan []byte, 100),
	}
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	data := make([]byte, len(p))
	copy(data, p)
	select {
	case t.writeChan <- data:
	default:
		// Test is not consuming writes; drop rather than deadlock.
	}
	return len(p), nil
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	data, ok := <-t.readChan
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.readChan)
	return nil
}

// SendData queues data to be read by the transport. This simulates the
// host typing on the channel.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- []byte(data)
	}
}

// Output returns the channel of chunks written to the transport, one
// entry per Write call.
func (t *TestTransport) Output() <-chan []byte {
	return t.writeChan
}
