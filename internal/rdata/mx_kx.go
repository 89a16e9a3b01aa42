package rdata

import (
	"strconv"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// preferenceAndName is the shared shape of MX (RFC 1035 §3.3.9) and KX
// (RFC 2230 §3.1): a 16-bit preference followed by one name. Neither
// qualifies for RFC 3597 §4 compression.
type preferenceAndName struct {
	RRType     protocol.RRType
	Cls        protocol.Class
	Preference uint16
	Exchange   wire.Name
}

func (r *preferenceAndName) Type() protocol.RRType { return r.RRType }
func (r *preferenceAndName) Class() protocol.Class { return r.Cls }

func registerPreferenceAndName(t protocol.RRType) {
	register(t, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) != 2 {
				return nil, fieldCountError(t, 2, len(tokens))
			}
			pref, err := strconv.ParseUint(tokens[0], 10, 16)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: t.String(), Value: tokens[0], Message: "preference must be a 16-bit integer"}
			}
			name, err := wire.NameFromText(tokens[1], origin, downcase)
			if err != nil {
				return nil, err
			}
			return &preferenceAndName{RRType: t, Cls: protocol.ClassIN, Preference: uint16(pref), Exchange: name}, nil
		},
		toText: func(r Rdata) string {
			p := r.(*preferenceAndName)
			return strconv.FormatUint(uint64(p.Preference), 10) + " " + p.Exchange.String()
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			pref, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			name, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			return &preferenceAndName{RRType: t, Cls: protocol.ClassIN, Preference: pref, Exchange: name}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			p := r.(*preferenceAndName)
			if err := buf.WriteUint16(p.Preference); err != nil {
				return err
			}
			return writeName(p.Exchange, buf, c, t.CompressibleInRdata())
		},
		compare: func(a, b Rdata) int {
			pa, pb := a.(*preferenceAndName), b.(*preferenceAndName)
			if pa.Preference != pb.Preference {
				if pa.Preference < pb.Preference {
					return -1
				}
				return 1
			}
			return wire.Compare(pa.Exchange, pb.Exchange)
		},
		additionalData: func(r Rdata) []AdditionalHint {
			p := r.(*preferenceAndName)
			return []AdditionalHint{{Name: p.Exchange, Type: protocol.TypeA}, {Name: p.Exchange, Type: protocol.TypeAAAA}}
		},
	})
}

func init() {
	registerPreferenceAndName(protocol.TypeMX)
	registerPreferenceAndName(protocol.TypeKX)
}
