package rdata

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// NULL carries an arbitrary opaque payload (RFC 1035 §3.3.10, BIND9
// lib/dns/rdata/generic/null_10.c). Unlike the strict meta types it is
// storable in a zone, just never given a structured interpretation.
type NULL struct {
	Cls  protocol.Class
	Data []byte
}

func (r *NULL) Type() protocol.RRType { return protocol.TypeNULL }
func (r *NULL) Class() protocol.Class { return r.Cls }

func init() {
	register(protocol.TypeNULL, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) < 2 || tokens[0] != `\#` {
				return nil, &errortypes.ValidationError{Field: "NULL", Value: strings.Join(tokens, " "), Message: "requires \\# <len> <hex> form"}
			}
			n, err := strconv.Atoi(tokens[1])
			if err != nil || n < 0 {
				return nil, &errortypes.ValidationError{Field: "NULL", Value: tokens[1], Message: "invalid length"}
			}
			data, err := hex.DecodeString(strings.Join(tokens[2:], ""))
			if err != nil || len(data) != n {
				return nil, &errortypes.ValidationError{Field: "NULL", Value: strings.Join(tokens[2:], ""), Message: "invalid hex payload"}
			}
			return &NULL{Cls: protocol.ClassIN, Data: data}, nil
		},
		toText: func(r Rdata) string {
			n := r.(*NULL)
			return "\\# " + strconv.Itoa(len(n.Data)) + " " + hex.EncodeToString(n.Data)
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			b, err := buf.ReadBytes(rdlen)
			if err != nil {
				return nil, err
			}
			return &NULL{Cls: protocol.ClassIN, Data: append([]byte{}, b...)}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			return buf.WriteBytes(r.(*NULL).Data)
		},
	})
}
