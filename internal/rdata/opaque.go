package rdata

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
)

// Opaque is the RFC 3597 §5 catch-all for any (class, type) pair this codec
// has no bespoke struct for. It keeps the wire bytes verbatim and presents
// as "\# <len> <hex>" in text form.
type Opaque struct {
	RRType protocol.RRType
	Cls    protocol.Class
	Data   []byte
}

func (o *Opaque) Type() protocol.RRType { return o.RRType }
func (o *Opaque) Class() protocol.Class { return o.Cls }

// String renders the RFC 3597 §5 unknown-record presentation format.
func (o *Opaque) String() string {
	return "\\# " + strconv.Itoa(len(o.Data)) + " " + hex.EncodeToString(o.Data)
}

// OpaqueFromText parses the "\# <len> <hex>" form. A token list that is not
// in that form is rejected: this codec never guesses at an unknown type's
// internal structure.
func OpaqueFromText(t protocol.RRType, class protocol.Class, tokens []string) (Rdata, error) {
	if len(tokens) < 2 || tokens[0] != `\#` {
		return nil, &errortypes.ValidationError{Field: "rdata", Value: strings.Join(tokens, " "), Message: "unknown type requires \\# <len> <hex> form"}
	}
	n, err := strconv.Atoi(tokens[1])
	if err != nil || n < 0 {
		return nil, &errortypes.ValidationError{Field: "rdata", Value: tokens[1], Message: "invalid unknown-type length"}
	}
	data, err := hex.DecodeString(strings.Join(tokens[2:], ""))
	if err != nil {
		return nil, &errortypes.ValidationError{Field: "rdata", Value: strings.Join(tokens[2:], ""), Message: "invalid hex in unknown-type rdata"}
	}
	if len(data) != n {
		return nil, &errortypes.ValidationError{Field: "rdata", Value: tokens[1], Message: "unknown-type length does not match hex payload"}
	}
	return &Opaque{RRType: t, Cls: class, Data: data}, nil
}
