package at

import "strings"

// Command is one fully parsed inbound sub-command. Commands are created
// fresh per parsed line and are immutable after construction.
type Command struct {
	// Name is the case-normalized command identifier ("+CSQ", "D", "&F").
	Name string
	// Type is fully determined by the marker found after Name.
	Type CommandType
	// Params is the ordered decoded parameter sequence. Empty for TEST
	// and READ; basic commands deliver their argument as one BareToken.
	Params []Param
	// Raw is the sub-command as it appeared on the (cleaned) line,
	// retained for diagnostics and handlers needing verbatim access.
	Raw string
}

// Decode classifies and finishes a tokenized sub-command: it validates
// type/parameter consistency and decodes the parameter tail.
//
// strictEmptySet controls the dialect choice for a bare "=" with nothing
// after it: when false it decodes to a single Omitted parameter, when
// true it fails with ErrMissingParameters.
func (rc RawCommand) Decode(strictEmptySet bool) (Command, error) {
	if rc.Err != nil {
		return Command{}, rc.Err
	}

	cmd := Command{Name: rc.Name, Type: rc.Type, Raw: rc.Raw}
	switch rc.Type {
	case Test, Read:
		if rc.Tail != "" {
			return Command{}, ErrUnexpectedParameters
		}

	case Execute:
		if rc.Tail != "" {
			// Only basic commands may carry an argument on EXECUTE; the
			// tokenizer guarantees extended EXECUTEs have an empty tail.
			cmd.Params = []Param{BareParam(rc.Tail)}
		}

	case Set:
		if rc.Tail == "" && strictEmptySet {
			return Command{}, ErrMissingParameters
		}
		params, err := DecodeParams(rc.Tail)
		if err != nil {
			return Command{}, err
		}
		cmd.Params = params
	}
	return cmd, nil
}

// Encode renders the command in the exact wire form a host would send,
// without the line terminator. It is the inverse of parsing for every
// Command holding parameters the decoder can produce.
func (c Command) Encode() string {
	var b strings.Builder
	b.WriteString("AT")
	b.WriteString(c.Name)
	b.WriteString(c.Type.Marker())
	switch c.Type {
	case Set:
		b.WriteString(EncodeParams(c.Params))
	case Execute:
		// Basic-command argument, written back verbatim.
		for _, p := range c.Params {
			b.WriteString(p.String())
		}
	}
	return b.String()
}
