package rdata

import (
	"strconv"
	"strings"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// readCharString reads one length-prefixed character-string (a single octet
// length followed by that many bytes), the wire framing used by TXT, HINFO
// and NAPTR's text fields (spec §4.3).
func readCharString(buf *wire.Buffer) ([]byte, error) {
	n, err := buf.ReadUint8()
	if err != nil {
		return nil, err
	}
	return buf.ReadBytes(int(n))
}

// writeCharString writes s as a length-prefixed character-string. s must be
// at most 255 bytes (spec §4.3).
func writeCharString(buf *wire.Buffer, s []byte) error {
	if len(s) > 255 {
		return &errortypes.ValidationError{Field: "character-string", Value: strconv.Itoa(len(s)), Message: "character-string exceeds 255 bytes"}
	}
	if err := buf.WriteUint8(uint8(len(s))); err != nil {
		return err
	}
	return buf.WriteBytes(s)
}

// escapeCharString applies spec §4.3's character-string escaping rule:
// bytes outside printable ASCII become \DDD, and '"', ';', '\\' get a
// leading backslash. The result is wrapped in double quotes.
func escapeCharString(s []byte) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range s {
		switch {
		case c == '"' || c == ';' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c < 0x20 || c > 0x7e:
			sb.WriteByte('\\')
			sb.WriteString(pad3(c))
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func pad3(c byte) string {
	s := strconv.Itoa(int(c))
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// unescapeCharString reverses escapeCharString on a token that includes its
// surrounding quotes (or not — bare unquoted tokens are accepted too, since
// master-file scanners commonly hand bare words to single-string fields).
// Each resulting character-string must fit in 255 bytes per spec §4.3.
func unescapeCharString(tok string) ([]byte, error) {
	s := tok
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	var out []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		if i+1 >= len(s) {
			return nil, &errortypes.ValidationError{Field: "character-string", Value: tok, Message: "trailing escape character"}
		}
		next := s[i+1]
		if next >= '0' && next <= '9' {
			if i+3 >= len(s) {
				return nil, &errortypes.ValidationError{Field: "character-string", Value: tok, Message: "truncated \\DDD escape"}
			}
			v, err := strconv.Atoi(s[i+1 : i+4])
			if err != nil || v > 255 {
				return nil, &errortypes.ValidationError{Field: "character-string", Value: tok, Message: "invalid \\DDD escape"}
			}
			out = append(out, byte(v))
			i += 3
		} else {
			out = append(out, next)
			i++
		}
	}
	if len(out) > 255 {
		return nil, &errortypes.ValidationError{Field: "character-string", Value: tok, Message: "character-string exceeds 255 bytes"}
	}
	return out, nil
}

// splitQuotedTokens tokenizes a master-file rdata field list on whitespace,
// treating double-quoted spans (with \" escapes) as single tokens. FromText
// does not call it: FromText takes a field list that is already tokenized.
func splitQuotedTokens(s string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			cur.WriteByte(c)
			inQuotes = !inQuotes
			if !inQuotes {
				flush()
			}
		case c == '\\' && i+1 < len(s):
			cur.WriteByte(c)
			cur.WriteByte(s[i+1])
			i++
		case (c == ' ' || c == '\t') && !inQuotes:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return tokens
}
