// Package rdata implements the resource-record-data codec: a dispatch table
// keyed by type which can parse rdata from master-file text or wire bytes,
// and serialize it back to either form (spec §4.3). The class is not part of
// the lookup: it is passed through to, and carried on, each parsed value, and
// every class shares the same per-type codec.
//
// Every supported type gets its own concrete Go struct
// implementing Rdata; unsupported types fall back to Opaque, which keeps the
// wire bytes verbatim and round-trips through the RFC 3597 §5 "\# <len>
// <hex>" unknown-record presentation format. This is a sum type expressed as
// an interface plus one struct per case, registered in a lookup table built
// at init time — a type switch at registration, never reflection.
package rdata

import (
	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// Rdata is the parsed form of a resource record's data section, tagged with
// the type that produced it.
type Rdata interface {
	Type() protocol.RRType
	Class() protocol.Class
}

// AdditionalHint is one (name, type) pair returned by AdditionalData for
// additional-section processing (e.g. an MX's exchange name hints an A/AAAA
// lookup).
type AdditionalHint struct {
	Name wire.Name
	Type protocol.RRType
}

// codec bundles the per-type operations of spec §4.3. FromText
// and FromWire are constructors; the rest operate on an already-parsed Rdata.
type codec struct {
	fromText func(tokens []string, origin wire.Name, downcase bool) (Rdata, error)
	toText   func(r Rdata) string
	fromWire func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error)
	toWire   func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error
	compare  func(a, b Rdata) int
	additionalData func(r Rdata) []AdditionalHint
	digest   func(r Rdata, buf *wire.Buffer) error
}

var registry = map[protocol.RRType]codec{}

func register(t protocol.RRType, c codec) {
	registry[t] = c
}

func lookup(t protocol.RRType) (codec, bool) {
	c, ok := registry[t]
	return c, ok
}

// FromText parses rdata of the given type from its already-tokenized
// master-file text form. origin resolves any relative embedded names;
// downcase folds embedded names to lowercase when they participate in the
// canonical form (spec §4.3). Types with no bespoke codec fall back to the
// RFC 3597 "\# <len> <hex>" unknown-record form via OpaqueFromText.
func FromText(t protocol.RRType, class protocol.Class, tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
	if c, ok := lookup(t); ok {
		return c.fromText(tokens, origin, downcase)
	}
	return OpaqueFromText(t, class, tokens)
}

// ToText renders r back to master-file text form (spec §4.3).
func ToText(r Rdata) string {
	if c, ok := lookup(r.Type()); ok {
		return c.toText(r)
	}
	if o, ok := r.(*Opaque); ok {
		return o.String()
	}
	return ""
}

// FromWire parses rdlen bytes of wire-format rdata starting at buf's current
// cursor. downcase folds embedded names that participate in the canonical
// form, per spec §4.3.
func FromWire(t protocol.RRType, class protocol.Class, buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
	if c, ok := lookup(t); ok {
		return c.fromWire(buf, rdlen, downcase)
	}
	body, err := buf.ReadBytes(rdlen)
	if err != nil {
		return nil, err
	}
	return &Opaque{RRType: t, Cls: class, Data: append([]byte{}, body...)}, nil
}

// ToWire serializes r to buf. c is consulted for name compression on the
// subset of types RFC 3597 §4 permits it for (spec §4.3); nil disables
// compression entirely (used for canonical-form/digest emission).
func ToWire(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
	if cd, ok := lookup(r.Type()); ok {
		return cd.toWire(r, buf, c)
	}
	if o, ok := r.(*Opaque); ok {
		return buf.WriteBytes(o.Data)
	}
	return &errortypes.ValidationError{Field: "rdata", Value: r.Type().String(), Message: "no wire encoder registered"}
}

// Compare returns -1/0/+1 in canonical order (spec §4.3): octet-wise on wire
// form with embedded names in canonical lowercased form. Types without a
// bespoke comparator fall back to byte-wise comparison of their canonical
// wire image.
func Compare(a, b Rdata) int {
	if a.Type() != b.Type() {
		if a.Type() < b.Type() {
			return -1
		}
		return 1
	}
	if cd, ok := lookup(a.Type()); ok && cd.compare != nil {
		return cd.compare(a, b)
	}
	return compareWireImage(a, b)
}

func compareWireImage(a, b Rdata) int {
	ba := canonicalBytes(a)
	bb := canonicalBytes(b)
	n := len(ba)
	if len(bb) < n {
		n = len(bb)
	}
	for i := 0; i < n; i++ {
		if ba[i] != bb[i] {
			if ba[i] < bb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ba) < len(bb):
		return -1
	case len(ba) > len(bb):
		return 1
	default:
		return 0
	}
}

func canonicalBytes(r Rdata) []byte {
	buf := wire.NewBuffer(65535)
	if err := Digest(r, buf); err == nil {
		return buf.Bytes()
	}
	if o, ok := r.(*Opaque); ok {
		return o.Data
	}
	return nil
}

// AdditionalData returns (name, type) hints for additional-section
// processing (spec §4.3's additional_data). Types with no hints return nil.
func AdditionalData(r Rdata) []AdditionalHint {
	if c, ok := lookup(r.Type()); ok && c.additionalData != nil {
		return c.additionalData(r)
	}
	return nil
}

// Digest writes r's canonical form (lowercased embedded names, no
// compression) to buf, for feeding a hash or signature sink (spec §4.3).
func Digest(r Rdata, buf *wire.Buffer) error {
	if c, ok := lookup(r.Type()); ok && c.digest != nil {
		return c.digest(r, buf)
	}
	return ToWire(r, buf, nil)
}
