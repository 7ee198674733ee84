package at_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/collab-project/atcmd/at"
)

func okHandler(info ...string) at.HandlerFunc {
	return func(ctx context.Context, cmd at.Command) (at.Response, error) {
		return at.OKResponse(info...), nil
	}
}

func TestRegistryRegister(t *testing.T) {
	t.Run("Duplicate registration fails", func(t *testing.T) {
		reg := at.NewRegistry()
		if err := reg.Register("+CSQ", at.Handlers{Read: okHandler()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := reg.Register("+CSQ", at.Handlers{Read: okHandler()})
		if !errors.Is(err, at.ErrDuplicateHandler) {
			t.Errorf("expected ErrDuplicateHandler, got %v", err)
		}
	})

	t.Run("Duplicate detection is case-insensitive", func(t *testing.T) {
		reg := at.NewRegistry()
		if err := reg.Register("+csq", at.Handlers{Read: okHandler()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := reg.Register("+CSQ", at.Handlers{Read: okHandler()})
		if !errors.Is(err, at.ErrDuplicateHandler) {
			t.Errorf("expected ErrDuplicateHandler, got %v", err)
		}
	})

	t.Run("Empty capability set fails", func(t *testing.T) {
		reg := at.NewRegistry()
		if err := reg.Register("+CSQ", at.Handlers{}); !errors.Is(err, at.ErrNoCapabilities) {
			t.Errorf("expected ErrNoCapabilities, got %v", err)
		}
	})
}

func TestRegistryReplace(t *testing.T) {
	reg := at.NewRegistry()
	if err := reg.Register("+CSQ", at.Handlers{Read: okHandler("+CSQ: 1,99")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.Replace("+CSQ", at.Handlers{Read: okHandler("+CSQ: 2,99")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h, ok := reg.Lookup("+CSQ")
	if !ok {
		t.Fatal("expected handler after replace")
	}
	resp, err := h.Read(context.Background(), at.Command{Name: "+CSQ", Type: at.Read})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Info) != 1 || resp.Info[0] != "+CSQ: 2,99" {
		t.Errorf("lookup returned stale handler: %v", resp.Info)
	}
}

func TestRegistryUnregister(t *testing.T) {
	reg := at.NewRegistry()
	if err := reg.Register("+CSQ", at.Handlers{Read: okHandler()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reg.Unregister("+CSQ")
	if _, ok := reg.Lookup("+CSQ"); ok {
		t.Error("handler still present after Unregister")
	}

	// Idempotent: absence is not an error and must not panic.
	reg.Unregister("+CSQ")
	reg.Unregister("+NEVER")
}

func TestRegistryLookupCaseInsensitive(t *testing.T) {
	reg := at.NewRegistry()
	if err := reg.Register("+CSQ", at.Handlers{Read: okHandler()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := reg.Lookup("+csq"); !ok {
		t.Error("lowercase lookup failed")
	}
}

func TestRegistryNames(t *testing.T) {
	reg := at.NewRegistry()
	for _, name := range []string{"+GMR", "+GMI", "I"} {
		if err := reg.Register(name, at.Handlers{Execute: okHandler()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	expected := []string{"+GMI", "+GMR", "I"}
	if names := reg.Names(); !slices.Equal(names, expected) {
		t.Errorf("got %v, expected %v", names, expected)
	}
}
