package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/collab-project/atcmd/at"
)

// identify serves ATI.
func (s *Set) identify(ctx context.Context, cmd at.Command) (at.Response, error) {
	return at.OKResponse(
		s.Device.Manufacturer,
		s.Device.Model,
		s.Device.Revision,
	), nil
}

// echo serves ATE, ATE0 and ATE1.
func (s *Set) echo(ctx context.Context, cmd at.Command) (at.Response, error) {
	arg := basicArg(cmd)

	var on bool
	switch arg {
	case "", "0":
		on = false
	case "1":
		on = true
	default:
		return at.Response{}, at.ErrUnexpectedParameters
	}

	if err := s.Store.SetFlag("echo", on); err != nil {
		return at.Response{}, err
	}
	if s.Echo != nil {
		s.Echo(on)
	}
	s.Logger.Debug("echo switched", zap.Bool("on", on))
	return at.OKResponse(), nil
}

// resetToProfile serves ATZ: reapply the stored profile.
func (s *Set) resetToProfile(ctx context.Context, cmd at.Command) (at.Response, error) {
	on, err := s.Store.Flag("echo")
	if err != nil {
		return at.Response{}, err
	}
	if s.Echo != nil {
		s.Echo(on)
	}
	s.Logger.Info("profile restored")
	return at.OKResponse(), nil
}

// factoryDefaults serves AT&F: wipe the profile and start over.
func (s *Set) factoryDefaults(ctx context.Context, cmd at.Command) (at.Response, error) {
	if err := s.Store.Reset(); err != nil {
		return at.Response{}, err
	}
	if s.Echo != nil {
		s.Echo(false)
	}
	return at.OKResponse(), nil
}

// sRegister serves ATSn? and ATSn=v.
func (s *Set) sRegister(ctx context.Context, cmd at.Command) (at.Response, error) {
	arg := basicArg(cmd)
	if arg == "" {
		return at.Response{}, at.ErrMissingParameters
	}

	if index, ok := strings.CutSuffix(arg, "?"); ok {
		n, err := strconv.Atoi(index)
		if err != nil {
			return at.Response{}, at.ErrMalformedCommand
		}
		v, err := s.Store.Get(n)
		if err != nil {
			return at.Response{}, err
		}
		return at.OKResponse(fmt.Sprintf("%03d", v)), nil
	}

	index, value, ok := strings.Cut(arg, "=")
	if !ok {
		return at.Response{}, at.ErrMalformedCommand
	}
	n, err := strconv.Atoi(index)
	if err != nil {
		return at.Response{}, at.ErrMalformedCommand
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return at.Response{}, at.ErrMalformedCommand
	}
	if err := s.Store.Set(n, v); err != nil {
		return at.Response{}, err
	}
	return at.OKResponse(), nil
}

// basicArg returns the raw argument of a basic command line, "0" from
// ATE0. Basic commands carry it as a single bare parameter.
func basicArg(cmd at.Command) string {
	if len(cmd.Params) == 0 || cmd.Params[0].Kind != at.BareToken {
		return ""
	}
	return cmd.Params[0].Str
}
