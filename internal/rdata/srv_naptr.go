package rdata

import (
	"strconv"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// SRV is a service-location record (RFC 2782). Target is never compressed.
type SRV struct {
	Cls      protocol.Class
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   wire.Name
}

func (r *SRV) Type() protocol.RRType { return protocol.TypeSRV }
func (r *SRV) Class() protocol.Class { return r.Cls }

// NAPTR is a naming-authority pointer record (RFC 2915). Replacement is
// never compressed.
type NAPTR struct {
	Cls         protocol.Class
	Order       uint16
	Preference  uint16
	Flags       []byte
	Services    []byte
	Regexp      []byte
	Replacement wire.Name
}

func (r *NAPTR) Type() protocol.RRType { return protocol.TypeNAPTR }
func (r *NAPTR) Class() protocol.Class { return r.Cls }

func parseUint16Field(t protocol.RRType, field, tok string) (uint16, error) {
	v, err := strconv.ParseUint(tok, 10, 16)
	if err != nil {
		return 0, &errortypes.ValidationError{Field: t.String(), Value: tok, Message: field + " must be a 16-bit integer"}
	}
	return uint16(v), nil
}

func init() {
	register(protocol.TypeSRV, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) != 4 {
				return nil, fieldCountError(protocol.TypeSRV, 4, len(tokens))
			}
			prio, err := parseUint16Field(protocol.TypeSRV, "priority", tokens[0])
			if err != nil {
				return nil, err
			}
			weight, err := parseUint16Field(protocol.TypeSRV, "weight", tokens[1])
			if err != nil {
				return nil, err
			}
			port, err := parseUint16Field(protocol.TypeSRV, "port", tokens[2])
			if err != nil {
				return nil, err
			}
			target, err := wire.NameFromText(tokens[3], origin, downcase)
			if err != nil {
				return nil, err
			}
			return &SRV{Cls: protocol.ClassIN, Priority: prio, Weight: weight, Port: port, Target: target}, nil
		},
		toText: func(r Rdata) string {
			s := r.(*SRV)
			return strconv.FormatUint(uint64(s.Priority), 10) + " " + strconv.FormatUint(uint64(s.Weight), 10) + " " +
				strconv.FormatUint(uint64(s.Port), 10) + " " + s.Target.String()
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			prio, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			weight, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			port, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			target, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			return &SRV{Cls: protocol.ClassIN, Priority: prio, Weight: weight, Port: port, Target: target}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			s := r.(*SRV)
			for _, v := range []uint16{s.Priority, s.Weight, s.Port} {
				if err := buf.WriteUint16(v); err != nil {
					return err
				}
			}
			return writeName(s.Target, buf, c, false)
		},
		additionalData: func(r Rdata) []AdditionalHint {
			s := r.(*SRV)
			return []AdditionalHint{{Name: s.Target, Type: protocol.TypeA}, {Name: s.Target, Type: protocol.TypeAAAA}}
		},
	})

	register(protocol.TypeNAPTR, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) != 6 {
				return nil, fieldCountError(protocol.TypeNAPTR, 6, len(tokens))
			}
			order, err := parseUint16Field(protocol.TypeNAPTR, "order", tokens[0])
			if err != nil {
				return nil, err
			}
			pref, err := parseUint16Field(protocol.TypeNAPTR, "preference", tokens[1])
			if err != nil {
				return nil, err
			}
			flags, err := unescapeCharString(tokens[2])
			if err != nil {
				return nil, err
			}
			services, err := unescapeCharString(tokens[3])
			if err != nil {
				return nil, err
			}
			regexp, err := unescapeCharString(tokens[4])
			if err != nil {
				return nil, err
			}
			replacement, err := wire.NameFromText(tokens[5], origin, downcase)
			if err != nil {
				return nil, err
			}
			return &NAPTR{Cls: protocol.ClassIN, Order: order, Preference: pref, Flags: flags, Services: services, Regexp: regexp, Replacement: replacement}, nil
		},
		toText: func(r Rdata) string {
			n := r.(*NAPTR)
			return strconv.FormatUint(uint64(n.Order), 10) + " " + strconv.FormatUint(uint64(n.Preference), 10) + " " +
				escapeCharString(n.Flags) + " " + escapeCharString(n.Services) + " " + escapeCharString(n.Regexp) + " " + n.Replacement.String()
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			order, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			pref, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			flags, err := readCharString(buf)
			if err != nil {
				return nil, err
			}
			services, err := readCharString(buf)
			if err != nil {
				return nil, err
			}
			regexp, err := readCharString(buf)
			if err != nil {
				return nil, err
			}
			replacement, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			return &NAPTR{Cls: protocol.ClassIN, Order: order, Preference: pref, Flags: flags, Services: services, Regexp: regexp, Replacement: replacement}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			n := r.(*NAPTR)
			if err := buf.WriteUint16(n.Order); err != nil {
				return err
			}
			if err := buf.WriteUint16(n.Preference); err != nil {
				return err
			}
			for _, cs := range [][]byte{n.Flags, n.Services, n.Regexp} {
				if err := writeCharString(buf, cs); err != nil {
					return err
				}
			}
			return writeName(n.Replacement, buf, c, false)
		},
	})
}
