package at

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Options configures a Dispatcher. Every knob lives on the Dispatcher
// instance, so independently configured channels can coexist in one
// process.
type Options struct {
	// StrictEmptySet rejects a bare "=" with an empty tail
	// (ErrMissingParameters) instead of decoding it to a single Omitted
	// parameter. Vendors disagree on this; the permissive default
	// matches the behavior most modules exhibit.
	StrictEmptySet bool

	// PreserveCase keeps unquoted parameter and argument text as
	// received instead of folding it to upper case. Command names are
	// matched case-insensitively either way.
	PreserveCase bool

	// Unsolicited receives lines that are not command lines (device
	// notifications such as "+CREG: 1"). When nil such lines are
	// silently dropped.
	Unsolicited func(line string)
}

// Dispatcher runs the inbound pipeline: tokenize, classify, decode
// parameters, look up the handler and invoke it, translating every
// failure into a well-formed ERROR segment. No failure of a single line
// escapes Handle; the channel stays usable for the next line.
//
// A Dispatcher is stateless between lines except for the small side
// table backing the "A/" repeat marker.
type Dispatcher struct {
	registry *Registry
	opts     Options

	mu       sync.Mutex
	lastLine string // last fully successful command line, for "A/"
}

// NewDispatcher builds a Dispatcher over the given registry. The
// registry may be shared by several dispatchers as long as it is no
// longer mutated, or mutated only through its own locking.
func NewDispatcher(registry *Registry, opts Options) *Dispatcher {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Dispatcher{registry: registry, opts: opts}
}

// Registry returns the registry this dispatcher consults.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Handle processes one complete, newline-stripped line and returns one
// Response segment per sub-command, in left-to-right dispatch order.
// A failing sub-command yields its own ERROR segment and does not stop
// the commands after it.
//
// Blank lines and unsolicited lines yield no segments; unsolicited
// lines are forwarded to the configured sink.
func (d *Dispatcher) Handle(ctx context.Context, line string) []Response {
	tl, err := tokenize(line, d.opts.PreserveCase)
	if err != nil {
		// The whole line was unusable (unterminated quote).
		return []Response{ErrorResponse(err)}
	}

	switch tl.Kind {
	case LineEmpty:
		return nil

	case LineUnsolicited:
		if d.opts.Unsolicited != nil {
			d.opts.Unsolicited(line)
		}
		return nil

	case LineRepeat:
		d.mu.Lock()
		last := d.lastLine
		d.mu.Unlock()
		if last == "" {
			return []Response{ErrorResponse(ErrMalformedCommand)}
		}
		return d.Handle(ctx, last)
	}

	// A bare "AT" is a valid ping.
	if len(tl.Commands) == 0 {
		d.remember(line)
		return []Response{OKResponse()}
	}

	segments := make([]Response, 0, len(tl.Commands))
	allOK := true
	for _, rc := range tl.Commands {
		resp := d.dispatch(ctx, rc)
		if !resp.OK() {
			allOK = false
		}
		segments = append(segments, resp)
	}

	// The repeat side table only advances past successfully dispatched
	// lines, never merely parsed ones.
	if allOK {
		d.remember(line)
	}
	return segments
}

// HandleRendered is a convenience wrapper returning the concatenated
// wire form of all Response segments for the line.
func (d *Dispatcher) HandleRendered(ctx context.Context, line string) string {
	return RenderAll(d.Handle(ctx, line))
}

func (d *Dispatcher) dispatch(ctx context.Context, rc RawCommand) (resp Response) {
	// A handler fault must not take down the channel.
	defer func() {
		if v := recover(); v != nil {
			resp = ErrorResponse(fmt.Errorf("at: handler panic: %v", v))
		}
	}()

	cmd, err := rc.Decode(d.opts.StrictEmptySet)
	if err != nil {
		return ErrorResponse(err)
	}

	handlers, ok := d.registry.Lookup(cmd.Name)
	if !ok {
		return ErrorResponse(ErrNotFound)
	}
	fn := handlers.ForType(cmd.Type)
	if fn == nil {
		return ErrorResponse(ErrCapabilityMismatch)
	}

	result, err := fn(ctx, cmd)
	if err != nil {
		var cme *CMEError
		if errors.As(err, &cme) {
			return CMEResponse(cme.Code, err)
		}
		return ErrorResponse(err)
	}
	if result.Status == "" {
		result.Status = OK
	}
	return result
}

func (d *Dispatcher) remember(line string) {
	d.mu.Lock()
	d.lastLine = line
	d.mu.Unlock()
}
