package at

import "strings"

// LineKind classifies a raw inbound line before any command is parsed.
type LineKind int

const (
	// LineEmpty is a blank line; it produces no response.
	LineEmpty LineKind = iota
	// LineCommand is an "AT..." command line.
	LineCommand
	// LineRepeat is the "A/" repeat-last-command marker.
	LineRepeat
	// LineUnsolicited is any other line; it belongs to the unsolicited
	// sink, not the dispatcher.
	LineUnsolicited
)

// RawCommand is one sub-command of a tokenized line, with its parameter
// tail still undecoded. A sub-command that could not be parsed carries
// the failure in Err; its position in the line is preserved so that the
// surrounding commands still dispatch in order.
type RawCommand struct {
	Name  string
	Type  CommandType
	Tail  string
	Basic bool   // single-letter basic command; Tail is its verbatim argument
	Raw   string // the sub-command as written (after cleaning)
	Err   error
}

// TokenizedLine is the result of tokenizing one raw line.
type TokenizedLine struct {
	Kind     LineKind
	Commands []RawCommand
}

// Tokenize splits a raw line into its kind and sub-commands. The "AT"
// prefix is case-insensitive; spaces outside quotes are discarded and
// unquoted text is folded to upper case, per V.250.
//
// Tokenize returns an error only when the whole line is unusable (an
// unterminated quote makes every later command boundary undecidable).
// A malformed sub-command with a findable boundary is reported in its
// RawCommand.Err instead, so the rest of the line still parses.
func Tokenize(line string) (TokenizedLine, error) {
	return tokenize(line, false)
}

func tokenize(line string, preserveCase bool) (TokenizedLine, error) {
	body := strings.TrimSpace(line)
	if body == "" {
		return TokenizedLine{Kind: LineEmpty}, nil
	}
	if strings.EqualFold(body, "A/") {
		return TokenizedLine{Kind: LineRepeat}, nil
	}
	if len(body) < 2 || !strings.EqualFold(body[:2], "AT") {
		return TokenizedLine{Kind: LineUnsolicited}, nil
	}

	cleaned, err := clean(body[2:], preserveCase)
	if err != nil {
		return TokenizedLine{}, err
	}

	tl := TokenizedLine{Kind: LineCommand}
	for i := 0; i < len(cleaned); {
		c := cleaned[i]
		switch {
		case c == ';':
			i++

		case isLetter(c):
			// Basic command: single-letter name, the rest of the line is
			// its verbatim argument. Basic commands are never chained.
			tl.Commands = append(tl.Commands, RawCommand{
				Name:  strings.ToUpper(string(c)),
				Type:  Execute,
				Tail:  cleaned[i+1:],
				Basic: true,
				Raw:   cleaned[i:],
			})
			i = len(cleaned)

		case isNameLead(c):
			rc, next := scanExtended(cleaned, i)
			tl.Commands = append(tl.Commands, rc)
			i = next

		default:
			// Nothing can start here. Skip to the next command boundary
			// and report this segment as malformed.
			stop := findUnquoted(cleaned, i, ';')
			tl.Commands = append(tl.Commands, RawCommand{
				Raw: cleaned[i:stop],
				Err: ErrMalformedCommand,
			})
			i = stop + 1
		}
	}
	return tl, nil
}

// scanExtended parses one extended command ("+CSQ=1,2") starting at the
// lead symbol cleaned[i]. It returns the command and the index of the
// first byte after its terminating ';' (or end of line).
func scanExtended(cleaned string, i int) (RawCommand, int) {
	j := i + 1
	for j < len(cleaned) && isNameChar(cleaned[j]) {
		j++
	}
	stop := findUnquoted(cleaned, j, ';')
	if j == i+1 {
		// Lone lead symbol, e.g. "AT+=1".
		return RawCommand{Raw: cleaned[i:stop], Err: ErrMalformedCommand}, stop + 1
	}
	name := strings.ToUpper(cleaned[i:j])

	typ := Execute
	end := j
	if j < len(cleaned) {
		switch cleaned[j] {
		case '?':
			typ = Read
			end = j + 1
		case '=':
			if j+1 < len(cleaned) && cleaned[j+1] == '?' {
				typ = Test
				end = j + 2
			} else {
				typ = Set
				end = j + 1
			}
		}
	}
	rc := RawCommand{
		Name: name,
		Type: typ,
		Tail: cleaned[end:stop],
		Raw:  cleaned[i:stop],
	}
	if typ == Execute && rc.Tail != "" {
		// An extended EXECUTE has nothing between name and boundary by
		// construction; leftovers mean the name run was broken by a
		// character that cannot appear here ("AT+FOO,1").
		rc = RawCommand{Raw: cleaned[i:stop], Err: ErrMalformedCommand}
	}
	return rc, stop + 1
}

// clean removes whitespace and folds text to upper case outside quoted
// regions, leaving quoted regions untouched. An unmatched quote is an
// error: the original line cannot be segmented past it.
func clean(s string, preserveCase bool) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			j := strings.IndexByte(s[i+1:], '"')
			if j < 0 {
				return "", ErrUnterminatedQuote
			}
			b.WriteString(s[i : i+j+2])
			i += j + 1
		case c == ' ' || c == '\t':
			// dropped outside quotes
		case preserveCase:
			b.WriteByte(c)
		default:
			b.WriteByte(upper(c))
		}
	}
	return b.String(), nil
}

// findUnquoted returns the index of the first ch at or after from,
// ignoring quoted regions, or len(s) if there is none.
func findUnquoted(s string, from int, ch byte) int {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '"':
			j := strings.IndexByte(s[i+1:], '"')
			if j < 0 {
				return len(s)
			}
			i += j + 1
		case ch:
			return i
		}
	}
	return len(s)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// isNameLead reports whether c can begin an extended command name.
func isNameLead(c byte) bool {
	switch c {
	case '+', '&', '%', '\\', '#':
		return true
	}
	return false
}

// isNameChar reports whether c may appear inside an extended command
// name. V.250 allows letters, digits and a small symbol set.
func isNameChar(c byte) bool {
	if isLetter(c) || (c >= '0' && c <= '9') {
		return true
	}
	switch c {
	case '!', '%', '-', '.', '/', ':', '_':
		return true
	}
	return false
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
