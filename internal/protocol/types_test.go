package protocol

import "testing"

// TestRRType_String covers the mnemonic table and the RFC 3597 §5 fallback
// presentation format for types the codec does not recognize.
func TestRRType_String(t *testing.T) {
	tests := []struct {
		rr   RRType
		want string
	}{
		{TypeA, "A"},
		{TypeAAAA, "AAAA"},
		{TypeSOA, "SOA"},
		{TypeNXT, "NXT"},
		{TypeDNAME, "DNAME"},
		{RRType(9999), "TYPE9999"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.rr.String(); got != tt.want {
				t.Errorf("RRType(%d).String() = %q, want %q", tt.rr, got, tt.want)
			}
		})
	}
}

func TestRRType_IsMeta(t *testing.T) {
	meta := []RRType{TypeANY, TypeAXFR, TypeOPT, TypeTKEY, TypeTSIG}
	for _, rr := range meta {
		if !rr.IsMeta() {
			t.Errorf("%s.IsMeta() = false, want true", rr)
		}
	}
	notMeta := []RRType{TypeA, TypeSIG, TypeKEY, TypeNXT, TypeSOA}
	for _, rr := range notMeta {
		if rr.IsMeta() {
			t.Errorf("%s.IsMeta() = true, want false", rr)
		}
	}
}

func TestRRType_IsDNSSEC(t *testing.T) {
	for _, rr := range []RRType{TypeSIG, TypeKEY, TypeNXT} {
		if !rr.IsDNSSEC() {
			t.Errorf("%s.IsDNSSEC() = false, want true", rr)
		}
	}
	if TypeA.IsDNSSEC() {
		t.Error("A.IsDNSSEC() = true, want false")
	}
}

// TestRRType_CompressibleInRdata pins down the exact RFC 3597 §4 compression
// eligibility list the spec calls out by name.
func TestRRType_CompressibleInRdata(t *testing.T) {
	compressible := []RRType{TypeNS, TypeCNAME, TypeSOA, TypeMB, TypeMG, TypeMR, TypePTR, TypeNXT}
	for _, rr := range compressible {
		if !rr.CompressibleInRdata() {
			t.Errorf("%s.CompressibleInRdata() = false, want true", rr)
		}
	}
	notCompressible := []RRType{TypeA, TypeAAAA, TypeMX, TypeSRV, TypeSIG, TypeKEY, TypeDNAME}
	for _, rr := range notCompressible {
		if rr.CompressibleInRdata() {
			t.Errorf("%s.CompressibleInRdata() = true, want false", rr)
		}
	}
}

func TestClass_String(t *testing.T) {
	tests := []struct {
		c    Class
		want string
	}{
		{ClassIN, "IN"},
		{ClassCH, "CH"},
		{ClassHS, "HS"},
		{ClassANY, "ANY"},
		{Class(7), "CLASS7"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Class(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestHeaderAttr_Has(t *testing.T) {
	a := AttrStale | AttrIgnore
	if !a.Has(AttrStale) {
		t.Error("expected AttrStale set")
	}
	if a.Has(AttrNonexistent) {
		t.Error("did not expect AttrNonexistent set")
	}
}

// TestTrust_Ordering pins down that trust levels compare as described in the
// glossary: higher means more trusted.
func TestTrust_Ordering(t *testing.T) {
	if !(TrustNone < TrustPending && TrustPending < TrustAdditional &&
		TrustAdditional < TrustGlue && TrustGlue < TrustAnswer &&
		TrustAnswer < TrustAuthoritative && TrustAuthoritative < TrustSecure &&
		TrustSecure < TrustAuthSecure) {
		t.Error("trust levels are not monotonically ordered from none to authsecure")
	}
}
