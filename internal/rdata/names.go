package rdata

import (
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// readName parses a name starting at buf's current cursor, honoring
// compression pointers into the full message buf already holds (Bytes()
// returns everything written/read so far, which for a parse buffer is the
// entire received message).
func readName(buf *wire.Buffer, downcase bool) (wire.Name, error) {
	n, next, err := wire.FromWire(buf.Bytes(), buf.Current(), downcase)
	if err != nil {
		return wire.Name{}, err
	}
	if err := buf.Seek(next); err != nil {
		return wire.Name{}, err
	}
	return n, nil
}

// writeName emits n either compressed (when the type permits it) or in
// canonical lowercased uncompressed form (RFC 3597 §4's default for every
// other type).
func writeName(n wire.Name, buf *wire.Buffer, c *wire.Compressor, compressible bool) error {
	if compressible && c != nil {
		return n.ToWire(buf, buf.Used(), c)
	}
	return n.ToWireCanonical(buf)
}

// singleName is the shared shape for every RR type whose entire rdata is one
// domain name: NS, CNAME, PTR, MB, MG, MR, DNAME (spec §4.3, BIND9
// lib/dns/rdata/generic/{ns_2,cname_5,ptr_12,mb_7,mg_8,mr_9} and
// lib/dns/rdata/in_1/dname_39 field layout: a bare NAME, nothing else).
type singleName struct {
	RRType protocol.RRType
	Cls    protocol.Class
	Target wire.Name
}

func (r *singleName) Type() protocol.RRType { return r.RRType }
func (r *singleName) Class() protocol.Class { return r.Cls }

// TargetName returns r's embedded name for any single-name rdata type (NS,
// CNAME, PTR, MB, MG, MR, DNAME), for callers that need the referent without
// caring which of those types it is (e.g. zonedb's glue validation against
// an NS rdataset).
func TargetName(r Rdata) (wire.Name, bool) {
	sn, ok := r.(*singleName)
	if !ok {
		return wire.Name{}, false
	}
	return sn.Target, true
}

func registerSingleName(t protocol.RRType) {
	register(t, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) != 1 {
				return nil, fieldCountError(t, 1, len(tokens))
			}
			n, err := wire.NameFromText(tokens[0], origin, downcase)
			if err != nil {
				return nil, err
			}
			return &singleName{RRType: t, Cls: protocol.ClassIN, Target: n}, nil
		},
		toText: func(r Rdata) string {
			return r.(*singleName).Target.String()
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			n, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			return &singleName{RRType: t, Cls: protocol.ClassIN, Target: n}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			return writeName(r.(*singleName).Target, buf, c, t.CompressibleInRdata())
		},
		compare: func(a, b Rdata) int {
			return wire.Compare(a.(*singleName).Target, b.(*singleName).Target)
		},
		additionalData: func(r Rdata) []AdditionalHint {
			sn := r.(*singleName)
			switch sn.RRType {
			case protocol.TypeNS:
				return []AdditionalHint{{Name: sn.Target, Type: protocol.TypeA}, {Name: sn.Target, Type: protocol.TypeAAAA}}
			default:
				return nil
			}
		},
	})
}

func init() {
	for _, t := range []protocol.RRType{
		protocol.TypeNS, protocol.TypeCNAME, protocol.TypePTR,
		protocol.TypeMB, protocol.TypeMG, protocol.TypeMR, protocol.TypeDNAME,
	} {
		registerSingleName(t)
	}
}
