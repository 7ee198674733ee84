// Package commands provides a registrable reference command set: the
// V.250 basic commands (I, E, Z, &F, S) and a small 27.007 subset
// (+GMI, +GMM, +GMR, +CMEE, +CSQ, +CPIN). It is the default
// personality of the virtual modem; device-specific sets register
// alongside or instead of it.
package commands

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/collab-project/atcmd/at"
	"github.com/collab-project/atcmd/registers"
)

// Device identifies the virtual modem to the host.
type Device struct {
	Manufacturer string
	Model        string
	Revision     string
}

// Set bundles the reference command handlers with the state they act
// on. Attach registers them into a Registry.
type Set struct {
	// Device is reported by ATI and the +GM* commands.
	Device Device

	// Store persists S-registers and the echo flag. Required.
	Store *registers.Store

	// Logger receives handler-level debug logging. Optional.
	Logger *zap.Logger

	// Echo is invoked when ATE0/ATE1 executes or when ATZ restores the
	// stored profile. Optional.
	Echo func(on bool)

	// PIN is the SIM PIN accepted by +CPIN. Empty means the SIM is not
	// locked and +CPIN? always reports READY.
	PIN string

	// Signal reports the +CSQ values. When nil a fixed 15,99 is used.
	Signal func() (rssi, ber int)

	// cmee is the +CMEE error reporting level (0..2).
	cmee atomic.Int32

	// pinOK records that the correct PIN was presented this session.
	pinOK atomic.Bool
}

// Attach registers every command of the set into reg.
func (s *Set) Attach(reg *at.Registry) error {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}

	for name, handlers := range map[string]at.Handlers{
		"I":     {Execute: s.identify},
		"E":     {Execute: s.echo},
		"Z":     {Execute: s.resetToProfile},
		"&F":    {Execute: s.factoryDefaults},
		"S":     {Execute: s.sRegister},
		"+GMI":  {Execute: s.manufacturer, Test: okTest},
		"+GMM":  {Execute: s.model, Test: okTest},
		"+GMR":  {Execute: s.revision, Test: okTest},
		"+CMEE": {Read: s.cmeeRead, Set: s.cmeeSet, Test: s.cmeeTest},
		"+CSQ":  {Read: s.signalQuality, Test: s.signalQualityTest},
		"+CPIN": {Read: s.pinRead, Set: s.pinSet},
	} {
		if err := reg.Register(name, handlers); err != nil {
			return err
		}
	}
	return nil
}

// failure wraps err according to the +CMEE level: verbose handlers
// return a CME error the dispatcher renders as "+CME ERROR: <n>",
// level 0 falls back to plain ERROR.
func (s *Set) failure(code int, err error) error {
	if s.cmee.Load() == 0 {
		return err
	}
	return &at.CMEError{Code: code, Message: err.Error()}
}
