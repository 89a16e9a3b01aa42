package rdata

import (
	"testing"

	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

func mustName(t *testing.T, text string) wire.Name {
	t.Helper()
	n, err := wire.NameFromText(text, wire.Root, true)
	if err != nil {
		t.Fatalf("NameFromText(%q): %v", text, err)
	}
	return n
}

func TestA_TextAndWireRoundTrip(t *testing.T) {
	r, err := FromText(protocol.TypeA, protocol.ClassIN, []string{"192.0.2.1"}, wire.Root, false)
	if err != nil {
		t.Fatalf("FromText: %v", err)
	}
	if got := ToText(r); got != "192.0.2.1" {
		t.Errorf("ToText() = %q, want 192.0.2.1", got)
	}

	buf := wire.NewBuffer(16)
	if err := ToWire(r, buf, nil); err != nil {
		t.Fatalf("ToWire: %v", err)
	}
	parseBuf := wire.NewBufferFromBytes(buf.Bytes())
	parsed, err := FromWire(protocol.TypeA, protocol.ClassIN, parseBuf, buf.Used(), false)
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	if Compare(r, parsed) != 0 {
		t.Errorf("round trip changed value: %v != %v", r, parsed)
	}
}

func TestA_RejectsBadRdlen(t *testing.T) {
	buf := wire.NewBufferFromBytes([]byte{1, 2, 3})
	if _, err := FromWire(protocol.TypeA, protocol.ClassIN, buf, 3, false); err == nil {
		t.Fatal("expected error for a 3-byte A rdata")
	}
}

func TestSOA_RoundTrip(t *testing.T) {
	origin := mustName(t, "example.com.")
	tokens := []string{"ns1.example.com.", "hostmaster.example.com.", "2024010100", "3600", "900", "604800", "3600"}
	r, err := FromText(protocol.TypeSOA, protocol.ClassIN, tokens, origin, true)
	if err != nil {
		t.Fatalf("FromText: %v", err)
	}
	soa := r.(*SOA)
	if soa.Serial != 2024010100 {
		t.Errorf("Serial = %d, want 2024010100", soa.Serial)
	}

	buf := wire.NewBuffer(128)
	if err := ToWire(r, buf, nil); err != nil {
		t.Fatalf("ToWire: %v", err)
	}
	parseBuf := wire.NewBufferFromBytes(buf.Bytes())
	parsed, err := FromWire(protocol.TypeSOA, protocol.ClassIN, parseBuf, buf.Used(), true)
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	parsedSOA := parsed.(*SOA)
	if !wire.Equal(parsedSOA.MName, soa.MName) || parsedSOA.Minimum != soa.Minimum {
		t.Errorf("round trip mismatch: %+v != %+v", parsedSOA, soa)
	}
}

func TestNS_CompressionRoundTrip(t *testing.T) {
	origin := mustName(t, "example.com.")
	ns, err := FromText(protocol.TypeNS, protocol.ClassIN, []string{"ns1.example.com."}, origin, true)
	if err != nil {
		t.Fatalf("FromText: %v", err)
	}

	buf := wire.NewBuffer(128)
	c := wire.NewCompressor()
	// Pre-seed the compressor with "example.com." at offset 0 as if a
	// question section owner name had already been emitted there.
	preseed, _ := wire.NameFromText("example.com.", wire.Root, true)
	if err := preseed.ToWire(buf, 0, c); err != nil {
		t.Fatalf("preseed ToWire: %v", err)
	}
	rdataOffset := buf.Used()
	if err := ToWire(ns, buf, c); err != nil {
		t.Fatalf("ToWire(ns): %v", err)
	}
	if buf.Used()-rdataOffset >= preseed.RawLen() {
		t.Error("expected ns1.example.com. rdata to compress shorter than the uncompressed suffix")
	}
}

func TestTXT_EscapingRoundTrip(t *testing.T) {
	r, err := FromText(protocol.TypeTXT, protocol.ClassIN, []string{`"hello \"world\""`, `"second string"`}, wire.Root, false)
	if err != nil {
		t.Fatalf("FromText: %v", err)
	}
	txt := r.(*TXT)
	if len(txt.Strings) != 2 {
		t.Fatalf("Strings count = %d, want 2", len(txt.Strings))
	}
	if string(txt.Strings[0]) != `hello "world"` {
		t.Errorf("Strings[0] = %q, want %q", txt.Strings[0], `hello "world"`)
	}

	buf := wire.NewBuffer(64)
	if err := ToWire(r, buf, nil); err != nil {
		t.Fatalf("ToWire: %v", err)
	}
	parseBuf := wire.NewBufferFromBytes(buf.Bytes())
	parsed, err := FromWire(protocol.TypeTXT, protocol.ClassIN, parseBuf, buf.Used(), false)
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	if Compare(r, parsed) != 0 {
		t.Error("TXT round trip did not reproduce the original strings")
	}
}

func TestNXT_BitmapRoundTrip(t *testing.T) {
	next := mustName(t, "b.example.com.")
	bitmap, err := encodeTypeBitmap([]string{"A", "MX", "SIG"})
	if err != nil {
		t.Fatalf("encodeTypeBitmap: %v", err)
	}
	n := &NXT{Cls: protocol.ClassIN, NextDomainName: next, TypeBitmap: bitmap}

	buf := wire.NewBuffer(64)
	if err := ToWire(n, buf, nil); err != nil {
		t.Fatalf("ToWire: %v", err)
	}
	parseBuf := wire.NewBufferFromBytes(buf.Bytes())
	parsed, err := FromWire(protocol.TypeNXT, protocol.ClassIN, parseBuf, buf.Used(), true)
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	parsedNXT := parsed.(*NXT)
	types := decodeTypeBitmap(parsedNXT.TypeBitmap)
	want := map[protocol.RRType]bool{protocol.TypeA: true, protocol.TypeMX: true, protocol.TypeSIG: true}
	if len(types) != len(want) {
		t.Fatalf("decoded %d types, want %d", len(types), len(want))
	}
	for _, ty := range types {
		if !want[ty] {
			t.Errorf("unexpected type %s in bitmap", ty)
		}
	}
}

func TestOpaque_UnknownTypeFallback(t *testing.T) {
	r, err := FromText(protocol.RRType(65280), protocol.ClassIN, []string{`\#`, "3", "aabbcc"}, wire.Root, false)
	if err != nil {
		t.Fatalf("FromText: %v", err)
	}
	if got := ToText(r); got != `\# 3 aabbcc` {
		t.Errorf("ToText() = %q, want %q", got, `\# 3 aabbcc`)
	}
}

func TestCompare_TypeOrderingDominates(t *testing.T) {
	a, _ := FromText(protocol.TypeA, protocol.ClassIN, []string{"192.0.2.1"}, wire.Root, false)
	ns, _ := FromText(protocol.TypeNS, protocol.ClassIN, []string{"ns1.example.com."}, wire.Root, true)
	if Compare(a, ns) >= 0 {
		t.Error("expected TypeA (1) to sort before TypeNS (2)")
	}
}
