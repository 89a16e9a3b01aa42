package rdata

import (
	"bytes"
	"net"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// A is an IPv4 address record (RFC 1035 §3.4.1).
type A struct {
	Cls     protocol.Class
	Address [4]byte
}

func (r *A) Type() protocol.RRType { return protocol.TypeA }
func (r *A) Class() protocol.Class { return r.Cls }

// AAAA is an IPv6 address record (RFC 3596 §2.2).
type AAAA struct {
	Cls     protocol.Class
	Address [16]byte
}

func (r *AAAA) Type() protocol.RRType { return protocol.TypeAAAA }
func (r *AAAA) Class() protocol.Class { return r.Cls }

func init() {
	register(protocol.TypeA, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) != 1 {
				return nil, fieldCountError(protocol.TypeA, 1, len(tokens))
			}
			ip := net.ParseIP(tokens[0]).To4()
			if ip == nil {
				return nil, &errortypes.ValidationError{Field: "A", Value: tokens[0], Message: "not a valid IPv4 address"}
			}
			var a [4]byte
			copy(a[:], ip)
			return &A{Cls: protocol.ClassIN, Address: a}, nil
		},
		toText: func(r Rdata) string {
			a := r.(*A)
			return net.IP(a.Address[:]).String()
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			if rdlen != 4 {
				return nil, &errortypes.WireFormatError{Operation: "parse A rdata", Message: "A rdata must be 4 bytes"}
			}
			b, err := buf.ReadBytes(4)
			if err != nil {
				return nil, err
			}
			var a [4]byte
			copy(a[:], b)
			return &A{Cls: protocol.ClassIN, Address: a}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			return buf.WriteBytes(r.(*A).Address[:])
		},
		compare: func(a, b Rdata) int {
			return bytes.Compare(a.(*A).Address[:], b.(*A).Address[:])
		},
	})

	register(protocol.TypeAAAA, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) != 1 {
				return nil, fieldCountError(protocol.TypeAAAA, 1, len(tokens))
			}
			ip := net.ParseIP(tokens[0]).To16()
			if ip == nil {
				return nil, &errortypes.ValidationError{Field: "AAAA", Value: tokens[0], Message: "not a valid IPv6 address"}
			}
			var a [16]byte
			copy(a[:], ip)
			return &AAAA{Cls: protocol.ClassIN, Address: a}, nil
		},
		toText: func(r Rdata) string {
			a := r.(*AAAA)
			return net.IP(a.Address[:]).String()
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			if rdlen != 16 {
				return nil, &errortypes.WireFormatError{Operation: "parse AAAA rdata", Message: "AAAA rdata must be 16 bytes"}
			}
			b, err := buf.ReadBytes(16)
			if err != nil {
				return nil, err
			}
			var a [16]byte
			copy(a[:], b)
			return &AAAA{Cls: protocol.ClassIN, Address: a}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			return buf.WriteBytes(r.(*AAAA).Address[:])
		},
		compare: func(a, b Rdata) int {
			return bytes.Compare(a.(*AAAA).Address[:], b.(*AAAA).Address[:])
		},
	})
}
