package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/collab-project/atcmd/at"
)

// okTest answers a TEST command that has nothing to report.
func okTest(ctx context.Context, cmd at.Command) (at.Response, error) {
	return at.OKResponse(), nil
}

// manufacturer serves AT+GMI.
func (s *Set) manufacturer(ctx context.Context, cmd at.Command) (at.Response, error) {
	return at.OKResponse(s.Device.Manufacturer), nil
}

// model serves AT+GMM.
func (s *Set) model(ctx context.Context, cmd at.Command) (at.Response, error) {
	return at.OKResponse(s.Device.Model), nil
}

// revision serves AT+GMR.
func (s *Set) revision(ctx context.Context, cmd at.Command) (at.Response, error) {
	return at.OKResponse(s.Device.Revision), nil
}

// cmeeRead serves AT+CMEE?.
func (s *Set) cmeeRead(ctx context.Context, cmd at.Command) (at.Response, error) {
	return at.OKResponse(fmt.Sprintf("+CMEE: %d", s.cmee.Load())), nil
}

// cmeeSet serves AT+CMEE=n.
func (s *Set) cmeeSet(ctx context.Context, cmd at.Command) (at.Response, error) {
	if len(cmd.Params) != 1 || cmd.Params[0].Kind != at.Integer {
		return at.Response{}, at.ErrUnexpectedParameters
	}
	level := cmd.Params[0].Int
	if level < 0 || level > 2 {
		return at.Response{}, at.ErrUnexpectedParameters
	}

	s.cmee.Store(int32(level))
	s.Logger.Debug("error reporting level changed", zap.Int("level", level))
	return at.OKResponse(), nil
}

// cmeeTest serves AT+CMEE=?.
func (s *Set) cmeeTest(ctx context.Context, cmd at.Command) (at.Response, error) {
	return at.OKResponse("+CMEE: (0-2)"), nil
}

// signalQuality serves AT+CSQ?.
func (s *Set) signalQuality(ctx context.Context, cmd at.Command) (at.Response, error) {
	rssi, ber := 15, 99
	if s.Signal != nil {
		rssi, ber = s.Signal()
	}
	return at.OKResponse(fmt.Sprintf("+CSQ: %d,%d", rssi, ber)), nil
}

// signalQualityTest serves AT+CSQ=?.
func (s *Set) signalQualityTest(ctx context.Context, cmd at.Command) (at.Response, error) {
	return at.OKResponse("+CSQ: (0-31,99),(0-7,99)"), nil
}

// pinRead serves AT+CPIN?.
func (s *Set) pinRead(ctx context.Context, cmd at.Command) (at.Response, error) {
	if s.PIN == "" || s.pinOK.Load() {
		return at.OKResponse("+CPIN: READY"), nil
	}
	return at.OKResponse("+CPIN: SIM PIN"), nil
}

// pinSet serves AT+CPIN="nnnn".
func (s *Set) pinSet(ctx context.Context, cmd at.Command) (at.Response, error) {
	if len(cmd.Params) != 1 || cmd.Params[0].Kind != at.QuotedString {
		return at.Response{}, at.ErrUnexpectedParameters
	}

	if s.PIN == "" || s.pinOK.Load() {
		// SIM is already unlocked, nothing to verify.
		return at.OKResponse(), nil
	}

	if cmd.Params[0].Str != s.PIN {
		s.Logger.Warn("incorrect PIN presented")
		return at.Response{}, s.failure(at.CMEIncorrectPassword, errors.New("incorrect password"))
	}

	s.pinOK.Store(true)
	s.Logger.Info("SIM unlocked")
	return at.OKResponse(), nil
}
