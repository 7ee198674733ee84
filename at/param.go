package at

import (
	"strconv"
	"strings"
)

// ParamKind discriminates the value forms a parameter slot can take.
type ParamKind int

const (
	// Omitted is an empty slot between commas (",,"). Position-dependent
	// commands rely on omitted slots keeping their place.
	Omitted ParamKind = iota
	// Integer is an optionally signed decimal number.
	Integer
	// QuotedString is a double-quoted string. "" inside quotes encodes a
	// literal quote.
	QuotedString
	// BareToken is any other unquoted text (symbolic constants, hex
	// strings, dial strings).
	BareToken
)

func (k ParamKind) String() string {
	switch k {
	case Integer:
		return "integer"
	case QuotedString:
		return "string"
	case BareToken:
		return "token"
	default:
		return "omitted"
	}
}

// Param is one decoded parameter value. Params are immutable once
// constructed; Int is only meaningful for Integer, Str for QuotedString
// and BareToken.
type Param struct {
	Kind ParamKind
	Int  int
	Str  string
}

func IntParam(v int) Param       { return Param{Kind: Integer, Int: v} }
func QuotedParam(s string) Param { return Param{Kind: QuotedString, Str: s} }
func BareParam(s string) Param   { return Param{Kind: BareToken, Str: s} }
func OmittedParam() Param        { return Param{Kind: Omitted} }

// String renders the parameter in its wire form.
func (p Param) String() string {
	switch p.Kind {
	case Integer:
		return strconv.Itoa(p.Int)
	case QuotedString:
		return `"` + strings.ReplaceAll(p.Str, `"`, `""`) + `"`
	case BareToken:
		if strings.ContainsAny(p.Str, `,"`) {
			return `"` + strings.ReplaceAll(p.Str, `"`, `""`) + `"`
		}
		return p.Str
	default:
		return ""
	}
}

// DecodeParams converts a raw parameter tail into an ordered parameter
// sequence. Commas split slots, except inside double quotes; "" inside a
// quoted region is an escaped quote. Whitespace around unquoted segments
// is trimmed, whitespace inside quotes is preserved.
//
// Decoding never reorders slots: the n-th returned Param corresponds to
// the n-th comma-separated segment, Omitted ones included.
func DecodeParams(tail string) ([]Param, error) {
	var params []Param

	start := 0
	inQuote := false
	for i := 0; ; i++ {
		if i >= len(tail) {
			if inQuote {
				return nil, ErrUnterminatedQuote
			}
			params = append(params, decodeSegment(tail[start:]))
			return params, nil
		}

		switch c := tail[i]; {
		case c == '"':
			if !inQuote {
				inQuote = true
			} else if i+1 < len(tail) && tail[i+1] == '"' {
				i++ // escaped quote, stay inside
			} else {
				inQuote = false
			}
		case c == ',' && !inQuote:
			params = append(params, decodeSegment(tail[start:i]))
			start = i + 1
		}
	}
}

func decodeSegment(seg string) Param {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return OmittedParam()
	}
	if len(seg) >= 2 && seg[0] == '"' && seg[len(seg)-1] == '"' {
		inner := seg[1 : len(seg)-1]
		return QuotedParam(strings.ReplaceAll(inner, `""`, `"`))
	}
	if isInteger(seg) {
		if v, err := strconv.Atoi(seg); err == nil {
			return IntParam(v)
		}
		// out of range for int: fall through to a bare token
	}
	return BareParam(seg)
}

func isInteger(s string) bool {
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// EncodeParams is the inverse of DecodeParams for every sequence the
// decoder can produce. Integers are rendered without leading zeros;
// quoting is re-applied to QuotedString values and to BareToken values
// containing a comma or a double quote.
func EncodeParams(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}
