package commands_test

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/collab-project/atcmd/at"
	"github.com/collab-project/atcmd/commands"
	"github.com/collab-project/atcmd/registers"
)

type fixture struct {
	set        *commands.Set
	dispatcher *at.Dispatcher
	echoState  *bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := registers.Open(filepath.Join(t.TempDir(), "profile.db"), nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	echoState := false
	set := &commands.Set{
		Device: commands.Device{
			Manufacturer: "collab",
			Model:        "atcmd-vm",
			Revision:     "1.0.0",
		},
		Store: store,
		PIN:   "1234",
		Echo:  func(on bool) { echoState = on },
	}

	registry := at.NewRegistry()
	if err := set.Attach(registry); err != nil {
		t.Fatalf("failed to attach command set: %v", err)
	}

	return &fixture{
		set:        set,
		dispatcher: at.NewDispatcher(registry, at.Options{}),
		echoState:  &echoState,
	}
}

// handleOne dispatches a single-command line and returns its segment.
func (f *fixture) handleOne(t *testing.T, line string) at.Response {
	t.Helper()

	segments := f.dispatcher.Handle(context.Background(), line)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment for %q, got %d", line, len(segments))
	}
	return segments[0]
}

func TestAttach(t *testing.T) {
	f := newFixture(t)

	names := f.dispatcher.Registry().Names()
	for _, want := range []string{"I", "E", "Z", "&F", "S", "+GMI", "+GMM", "+GMR", "+CMEE", "+CSQ", "+CPIN"} {
		if !slices.Contains(names, want) {
			t.Errorf("expected %s to be registered, got: %v", want, names)
		}
	}
}

func TestIdentification(t *testing.T) {
	f := newFixture(t)

	resp := f.handleOne(t, "ATI")
	if !resp.OK() {
		t.Fatalf("expected OK, got: %s", resp.Status)
	}
	want := []string{"collab", "atcmd-vm", "1.0.0"}
	if !slices.Equal(resp.Info, want) {
		t.Errorf("expected %v, got: %v", want, resp.Info)
	}

	resp = f.handleOne(t, "AT+GMM")
	if !resp.OK() || len(resp.Info) != 1 || resp.Info[0] != "atcmd-vm" {
		t.Errorf("unexpected +GMM response: %+v", resp)
	}
}

func TestEcho(t *testing.T) {
	f := newFixture(t)

	if resp := f.handleOne(t, "ATE1"); !resp.OK() {
		t.Fatalf("expected OK, got: %s", resp.Status)
	}
	if !*f.echoState {
		t.Error("expected echo callback to switch on")
	}

	if resp := f.handleOne(t, "ATE0"); !resp.OK() {
		t.Fatalf("expected OK, got: %s", resp.Status)
	}
	if *f.echoState {
		t.Error("expected echo callback to switch off")
	}

	if resp := f.handleOne(t, "ATE5"); resp.OK() {
		t.Error("expected ERROR for unsupported echo value")
	}
}

func TestSRegisters(t *testing.T) {
	f := newFixture(t)

	if resp := f.handleOne(t, "ATS7=90"); !resp.OK() {
		t.Fatalf("expected OK, got: %s", resp.Status)
	}

	resp := f.handleOne(t, "ATS7?")
	if !resp.OK() {
		t.Fatalf("expected OK, got: %s", resp.Status)
	}
	if len(resp.Info) != 1 || resp.Info[0] != "090" {
		t.Errorf("expected 090, got: %v", resp.Info)
	}

	if resp := f.handleOne(t, "ATS999=1"); resp.OK() {
		t.Error("expected ERROR for out-of-range register")
	}
	if resp := f.handleOne(t, "ATS"); resp.OK() {
		t.Error("expected ERROR for bare ATS")
	}
}

func TestProfileReset(t *testing.T) {
	f := newFixture(t)

	f.handleOne(t, "ATE1")
	f.handleOne(t, "ATS7=90")

	if resp := f.handleOne(t, "AT&F"); !resp.OK() {
		t.Fatalf("expected OK, got: %s", resp.Status)
	}
	if *f.echoState {
		t.Error("expected factory reset to switch echo off")
	}

	resp := f.handleOne(t, "ATS7?")
	if len(resp.Info) != 1 || resp.Info[0] != "050" {
		t.Errorf("expected S7 back at 050, got: %v", resp.Info)
	}
}

func TestProfileRestore(t *testing.T) {
	f := newFixture(t)

	f.handleOne(t, "ATE1")
	*f.echoState = false // simulate a fresh session with a stored profile

	if resp := f.handleOne(t, "ATZ"); !resp.OK() {
		t.Fatalf("expected OK, got: %s", resp.Status)
	}
	if !*f.echoState {
		t.Error("expected ATZ to restore stored echo setting")
	}
}

func TestErrorReporting(t *testing.T) {
	f := newFixture(t)

	resp := f.handleOne(t, "AT+CMEE?")
	if len(resp.Info) != 1 || resp.Info[0] != "+CMEE: 0" {
		t.Errorf("expected +CMEE: 0, got: %v", resp.Info)
	}

	// Level 0 reports failures as plain ERROR.
	resp = f.handleOne(t, `AT+CPIN="0000"`)
	if resp.Status != at.ERROR {
		t.Errorf("expected ERROR at level 0, got: %s", resp.Status)
	}

	if resp := f.handleOne(t, "AT+CMEE=2"); !resp.OK() {
		t.Fatalf("expected OK, got: %s", resp.Status)
	}

	resp = f.handleOne(t, `AT+CPIN="0000"`)
	if resp.Status != "+CME ERROR: 16" {
		t.Errorf("expected +CME ERROR: 16, got: %s", resp.Status)
	}

	if resp := f.handleOne(t, "AT+CMEE=3"); resp.OK() {
		t.Error("expected ERROR for out-of-range level")
	}

	resp = f.handleOne(t, "AT+CMEE=?")
	if len(resp.Info) != 1 || resp.Info[0] != "+CMEE: (0-2)" {
		t.Errorf("unexpected test response: %v", resp.Info)
	}
}

func TestPIN(t *testing.T) {
	f := newFixture(t)

	resp := f.handleOne(t, "AT+CPIN?")
	if len(resp.Info) != 1 || resp.Info[0] != "+CPIN: SIM PIN" {
		t.Errorf("expected SIM PIN prompt, got: %v", resp.Info)
	}

	// PIN must be a quoted string.
	if resp := f.handleOne(t, "AT+CPIN=1234"); resp.OK() {
		t.Error("expected ERROR for unquoted PIN")
	}

	if resp := f.handleOne(t, `AT+CPIN="1234"`); !resp.OK() {
		t.Fatalf("expected OK for correct PIN, got: %s", resp.Status)
	}

	resp = f.handleOne(t, "AT+CPIN?")
	if len(resp.Info) != 1 || resp.Info[0] != "+CPIN: READY" {
		t.Errorf("expected READY after unlock, got: %v", resp.Info)
	}
}

func TestSignalQuality(t *testing.T) {
	f := newFixture(t)

	resp := f.handleOne(t, "AT+CSQ?")
	if len(resp.Info) != 1 || resp.Info[0] != "+CSQ: 15,99" {
		t.Errorf("expected default signal report, got: %v", resp.Info)
	}

	f.set.Signal = func() (int, int) { return 23, 0 }
	resp = f.handleOne(t, "AT+CSQ?")
	if len(resp.Info) != 1 || resp.Info[0] != "+CSQ: 23,0" {
		t.Errorf("expected live signal report, got: %v", resp.Info)
	}

	resp = f.handleOne(t, "AT+CSQ=?")
	if len(resp.Info) != 1 || resp.Info[0] != "+CSQ: (0-31,99),(0-7,99)" {
		t.Errorf("unexpected test response: %v", resp.Info)
	}
}
