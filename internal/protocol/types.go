// Package protocol defines wire-level DNS constants shared by the codec and
// the zone database: record types, classes, response codes and the internal
// trust/attribute vocabulary used to rank and age cached data.
package protocol

// RRType is a DNS resource record type per RFC 1035 §3.2.2 and the later RFCs
// that extend it (RFC 2782 SRV, RFC 2915 NAPTR, RFC 2535/3755 SIG/KEY/NXT,
// RFC 6672 DNAME, RFC 6891 OPT, RFC 2845/2930 TSIG/TKEY).
type RRType uint16

// Resource record types handled by the rdata codec (spec §4.3).
const (
	TypeA      RRType = 1
	TypeNS     RRType = 2
	TypeMD     RRType = 3
	TypeMF     RRType = 4
	TypeCNAME  RRType = 5
	TypeSOA    RRType = 6
	TypeMB     RRType = 7
	TypeMG     RRType = 8
	TypeMR     RRType = 9
	TypeNULL   RRType = 10
	TypeWKS    RRType = 11
	TypePTR    RRType = 12
	TypeHINFO  RRType = 13
	TypeMINFO  RRType = 14
	TypeMX     RRType = 15
	TypeTXT    RRType = 16
	TypeRP     RRType = 17
	TypeAFSDB  RRType = 18
	TypeX25    RRType = 19
	TypeISDN   RRType = 20
	TypeRT     RRType = 21
	TypeNSAP   RRType = 22
	TypeNSAPPTR RRType = 23
	TypeSIG    RRType = 24
	TypeKEY    RRType = 25
	TypePX     RRType = 26
	TypeGPOS   RRType = 27
	TypeAAAA   RRType = 28
	TypeLOC    RRType = 29
	TypeNXT    RRType = 30
	TypeSRV    RRType = 33
	TypeNAPTR  RRType = 35
	TypeKX     RRType = 36
	TypeCERT   RRType = 37
	TypeA6     RRType = 38
	TypeDNAME  RRType = 39
	TypeOPT    RRType = 41
	TypeTKEY   RRType = 249
	TypeTSIG   RRType = 250
	TypeAXFR   RRType = 252
	TypeANY    RRType = 255
)

var typeNames = map[RRType]string{
	TypeA: "A", TypeNS: "NS", TypeMD: "MD", TypeMF: "MF", TypeCNAME: "CNAME",
	TypeSOA: "SOA", TypeMB: "MB", TypeMG: "MG", TypeMR: "MR", TypeNULL: "NULL",
	TypeWKS: "WKS", TypePTR: "PTR", TypeHINFO: "HINFO", TypeMINFO: "MINFO",
	TypeMX: "MX", TypeTXT: "TXT", TypeRP: "RP", TypeAFSDB: "AFSDB",
	TypeX25: "X25", TypeISDN: "ISDN", TypeRT: "RT", TypeNSAP: "NSAP",
	TypeNSAPPTR: "NSAP-PTR", TypeSIG: "SIG", TypeKEY: "KEY", TypePX: "PX",
	TypeGPOS: "GPOS", TypeAAAA: "AAAA", TypeLOC: "LOC", TypeNXT: "NXT",
	TypeSRV: "SRV", TypeNAPTR: "NAPTR", TypeKX: "KX", TypeCERT: "CERT",
	TypeA6: "A6", TypeDNAME: "DNAME", TypeOPT: "OPT", TypeTKEY: "TKEY",
	TypeTSIG: "TSIG", TypeAXFR: "AXFR", TypeANY: "ANY",
}

// String returns the RFC mnemonic for t, or "TYPE<n>" per RFC 3597 §5 if t is
// not one of the types this codec recognizes.
func (t RRType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return unknownTypeName(t)
}

// IsMeta reports whether t is a meta-type that can appear in a question or
// OPT/TKEY/TSIG pseudo-section but is never storable in a zone (spec §4.3).
func (t RRType) IsMeta() bool {
	switch t {
	case TypeANY, TypeAXFR, TypeOPT, TypeTKEY, TypeTSIG:
		return true
	default:
		return false
	}
}

// IsDNSSEC reports whether t is one of the legacy DNSSEC types this codec
// marks specially (spec §4.3): SIG, KEY, NXT.
func (t RRType) IsDNSSEC() bool {
	switch t {
	case TypeSIG, TypeKEY, TypeNXT:
		return true
	default:
		return false
	}
}

// CompressibleInRdata reports whether names embedded in t's rdata are
// eligible for message-compression on emission per RFC 3597 §4: only NS,
// CNAME, SOA, MB, MG, MR, PTR and NXT compress their embedded names; every
// other type emits embedded names uncompressed in canonical wire form.
func (t RRType) CompressibleInRdata() bool {
	switch t {
	case TypeNS, TypeCNAME, TypeSOA, TypeMB, TypeMG, TypeMR, TypePTR, TypeNXT:
		return true
	default:
		return false
	}
}

// ParseRRType looks up an RR type by its RFC mnemonic (e.g. "AAAA"), the
// inverse of RRType.String for the types this codec recognizes by name.
// RFC 3597 §5's "TYPE<n>" form is not accepted here; callers that need it
// parse the numeric suffix themselves.
func ParseRRType(name string) (RRType, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Class is a DNS class per RFC 1035 §3.2.4.
type Class uint16

const (
	ClassIN  Class = 1
	ClassCH  Class = 3
	ClassHS  Class = 4
	ClassANY Class = 255
)

func (c Class) String() string {
	switch c {
	case ClassIN:
		return "IN"
	case ClassCH:
		return "CH"
	case ClassHS:
		return "HS"
	case ClassANY:
		return "ANY"
	default:
		return "CLASS" + itoa(uint16(c))
	}
}

// Rcode is a DNS response code. The low 4 bits are carried in the header per
// RFC 1035 §4.1.1; EDNS0 (RFC 6891 §6.1.3) extends it with 8 more bits stored
// in the OPT TTL field.
type Rcode uint16

const (
	RcodeNoError  Rcode = 0
	RcodeFormErr  Rcode = 1
	RcodeServFail Rcode = 2
	RcodeNXDomain Rcode = 3
	RcodeNotImp   Rcode = 4
	RcodeRefused  Rcode = 5
	RcodeNotAuth  Rcode = 9
	RcodeBadVers  Rcode = 16
	RcodeBadSig   Rcode = 16 // TSIG shares the value per RFC 2845 §4.5
	RcodeBadKey   Rcode = 17
	RcodeBadTime  Rcode = 18
)

// Trust is an ordinal label on cached/zone data expressing provenance
// strength (spec §3, Rdataset). Higher values are more trusted.
type Trust uint8

const (
	TrustNone Trust = iota
	TrustPending
	TrustAdditional
	TrustGlue
	TrustAnswer
	TrustAuthoritative
	TrustSecure
	TrustAuthSecure
)

// HeaderAttr is a bitset of the attributes carried on a per-version rdataset
// header (spec §3, Rdatasetheader).
type HeaderAttr uint8

const (
	// AttrNonexistent marks a deletion tombstone at this version.
	AttrNonexistent HeaderAttr = 1 << iota
	// AttrStale marks data visible only until its ttl elapses (cache mode only).
	AttrStale
	// AttrIgnore marks a header invisible to readers at any version (rollback).
	AttrIgnore
	// AttrRetain marks a header that must survive a cleanup sweep even though
	// it is superseded, because an iterator still references it.
	AttrRetain
)

func (a HeaderAttr) Has(bit HeaderAttr) bool { return a&bit != 0 }

func itoa(v uint16) string {
	if v == 0 {
		return "0"
	}
	var buf [5]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func unknownTypeName(t RRType) string {
	return "TYPE" + itoa(uint16(t))
}
