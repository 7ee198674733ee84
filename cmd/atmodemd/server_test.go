package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/collab-project/atcmd/modem"
	"github.com/collab-project/atcmd/registers"
)

type testDialer struct {
	transport modem.Transport
}

func (d testDialer) Dial(ctx context.Context) (modem.Transport, error) {
	return d.transport, nil
}

func newTestServer(t *testing.T) (*Server, *modem.TestTransport) {
	t.Helper()

	store, err := registers.Open(filepath.Join(t.TempDir(), "profile.db"), nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	transport := modem.NewTestTransport()
	config, err := modem.NewConfigBuilder().
		WithDialer(testDialer{transport: transport}).
		Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}

	m, err := modem.New(context.Background(), config)
	if err != nil {
		t.Fatalf("failed to create modem: %v", err)
	}
	t.Cleanup(func() { m.Close() })

	return &Server{
		Logger: zap.NewNop(),
		Modem:  m,
		Store:  store,
	}, transport
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestNotifyEndpoint(t *testing.T) {
	t.Run("Emits the line to the host channel", func(t *testing.T) {
		server, transport := newTestServer(t)

		body := strings.NewReader(`{"line": "+CREG: 1"}`)
		req := httptest.NewRequest(http.MethodPost, "/notify", body)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		select {
		case chunk := <-transport.Output():
			if string(chunk) != "\r\n+CREG: 1\r\n" {
				t.Errorf("unexpected framing: %q", chunk)
			}
		case <-time.After(time.Second):
			t.Error("expected notification on the transport")
		}
	})

	t.Run("Rejects missing line", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Rejects bad JSON", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("Reports a stored register", func(t *testing.T) {
		server, _ := newTestServer(t)

		if err := server.Store.Set(7, 90); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/registers/7", nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp struct {
			Index int `json:"index"`
			Value int `json:"value"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Index != 7 || resp.Value != 90 {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("Rejects non-numeric index", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/registers/abc", nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Rejects out-of-range index", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/registers/999", nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}
