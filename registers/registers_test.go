package registers_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/collab-project/atcmd/registers"
)

func openTestStore(t *testing.T) *registers.Store {
	t.Helper()

	store, err := registers.Open(filepath.Join(t.TempDir(), "profile.db"), nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRegisters(t *testing.T) {
	t.Run("Unset register reports factory default", func(t *testing.T) {
		store := openTestStore(t)

		v, err := store.Get(3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 13 {
			t.Errorf("expected S3 default 13, got %d", v)
		}

		v, err = store.Get(100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 0 {
			t.Errorf("expected unlisted register to default to 0, got %d", v)
		}
	})

	t.Run("Set then Get round trip", func(t *testing.T) {
		store := openTestStore(t)

		if err := store.Set(0, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		v, err := store.Get(0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 2 {
			t.Errorf("expected 2, got %d", v)
		}
	})

	t.Run("Out of range index and value", func(t *testing.T) {
		store := openTestStore(t)

		if err := store.Set(256, 0); !errors.Is(err, registers.ErrInvalidRegister) {
			t.Errorf("expected ErrInvalidRegister for index 256, got: %v", err)
		}
		if err := store.Set(0, 300); !errors.Is(err, registers.ErrInvalidRegister) {
			t.Errorf("expected ErrInvalidRegister for value 300, got: %v", err)
		}
		if _, err := store.Get(-1); !errors.Is(err, registers.ErrInvalidRegister) {
			t.Errorf("expected ErrInvalidRegister for index -1, got: %v", err)
		}
	})
}

func TestStoreFlags(t *testing.T) {
	t.Run("Unknown flag reports false", func(t *testing.T) {
		store := openTestStore(t)

		on, err := store.Flag("echo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if on {
			t.Error("expected unknown flag to be false")
		}
	})

	t.Run("SetFlag then Flag round trip", func(t *testing.T) {
		store := openTestStore(t)

		if err := store.SetFlag("echo", true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		on, err := store.Flag("echo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !on {
			t.Error("expected flag to be true after SetFlag")
		}
	})
}

func TestStoreReset(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set(7, 90); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SetFlag("echo", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("unexpected error from Reset(): %v", err)
	}

	v, err := store.Get(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 50 {
		t.Errorf("expected S7 back at factory default 50, got %d", v)
	}

	on, err := store.Flag("echo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if on {
		t.Error("expected flag cleared after Reset")
	}
}
