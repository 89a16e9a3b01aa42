package zonedb

import (
	"testing"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/rdata"
	"github.com/joshuafuller/zoneguard/internal/rdataslab"
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

func mustSlab(t *testing.T, typ protocol.RRType, text string) rdataslab.Slab {
	t.Helper()
	r, err := rdata.FromText(typ, protocol.ClassIN, []string{text}, wire.Root, false)
	if err != nil {
		t.Fatalf("FromText(%v, %q): %v", typ, text, err)
	}
	slab, err := rdataslab.FromRdataset([]rdata.Rdata{r})
	if err != nil {
		t.Fatalf("FromRdataset: %v", err)
	}
	return slab
}

func TestVersionLifecycle_CommitBecomesCurrent(t *testing.T) {
	db := New(ModeZone)
	v, err := db.NewVersion()
	if err != nil {
		t.Fatalf("NewVersion: %v", err)
	}
	if err := db.AddRdataset(mustName(t, "www.example.com."), protocol.TypeA, v, mustSlab(t, protocol.TypeA, "192.0.2.1"), protocol.TrustAuthoritative, 300, 0, false); err != nil {
		t.Fatalf("AddRdataset: %v", err)
	}
	if err := db.CloseVersion(v, true); err != nil {
		t.Fatalf("CloseVersion: %v", err)
	}

	cur := db.CurrentVersion()
	res, err := db.ZoneFind(mustName(t, "www.example.com."), cur, protocol.TypeA, 0)
	if err != nil {
		t.Fatalf("ZoneFind: %v", err)
	}
	if res.Outcome != errortypes.Success {
		t.Fatalf("Outcome = %v, want Success", res.Outcome)
	}
	if res.Rdataset.Count() != 1 {
		t.Errorf("Rdataset.Count() = %d, want 1", res.Rdataset.Count())
	}
}

func TestNewVersion_OnlyOneWriterAtATime(t *testing.T) {
	db := New(ModeZone)
	v1, err := db.NewVersion()
	if err != nil {
		t.Fatalf("NewVersion: %v", err)
	}
	if _, err := db.NewVersion(); err == nil {
		t.Errorf("second NewVersion succeeded while a writer is open")
	}
	if err := db.CloseVersion(v1, false); err != nil {
		t.Fatalf("CloseVersion: %v", err)
	}
	if _, err := db.NewVersion(); err != nil {
		t.Errorf("NewVersion after close failed: %v", err)
	}
}

func TestZoneFind_NXDomainInsecureZone(t *testing.T) {
	db := New(ModeZone)
	v, _ := db.NewVersion()
	db.AddRdataset(mustName(t, "example.com."), protocol.TypeSOA, v, mustSlab(t, protocol.TypeSOA, "ns.example.com. hostmaster.example.com. 1 3600 600 86400 300"), protocol.TrustAuthoritative, 3600, 0, false)
	db.CloseVersion(v, true)

	cur := db.CurrentVersion()
	res, err := db.ZoneFind(mustName(t, "nope.example.com."), cur, protocol.TypeA, 0)
	if err != nil {
		t.Fatalf("ZoneFind: %v", err)
	}
	if res.Outcome != errortypes.NXDomain {
		t.Errorf("Outcome = %v, want NXDomain", res.Outcome)
	}
}

func TestZoneFind_NXRRSetOnExactNameWrongType(t *testing.T) {
	db := New(ModeZone)
	v, _ := db.NewVersion()
	db.AddRdataset(mustName(t, "www.example.com."), protocol.TypeA, v, mustSlab(t, protocol.TypeA, "192.0.2.1"), protocol.TrustAuthoritative, 300, 0, false)
	db.CloseVersion(v, true)

	cur := db.CurrentVersion()
	res, err := db.ZoneFind(mustName(t, "www.example.com."), cur, protocol.TypeAAAA, 0)
	if err != nil {
		t.Fatalf("ZoneFind: %v", err)
	}
	if res.Outcome != errortypes.NXRRSet {
		t.Errorf("Outcome = %v, want NXRRSet", res.Outcome)
	}
}

func TestZoneFind_DelegationBelowNS(t *testing.T) {
	db := New(ModeZone)
	db.SetApex(mustName(t, "example.com."))
	v, _ := db.NewVersion()
	db.AddRdataset(mustName(t, "example.com."), protocol.TypeSOA, v, mustSlab(t, protocol.TypeSOA, "ns.example.com. hostmaster.example.com. 1 3600 600 86400 300"), protocol.TrustAuthoritative, 3600, 0, true)
	db.AddRdataset(mustName(t, "sub.example.com."), protocol.TypeNS, v, mustSlab(t, protocol.TypeNS, "ns.sub.example.com."), protocol.TrustAuthoritative, 3600, 0, false)
	db.CloseVersion(v, true)

	cur := db.CurrentVersion()
	res, err := db.ZoneFind(mustName(t, "host.sub.example.com."), cur, protocol.TypeA, 0)
	if err != nil {
		t.Fatalf("ZoneFind: %v", err)
	}
	if res.Outcome != errortypes.Delegation {
		t.Fatalf("Outcome = %v, want Delegation", res.Outcome)
	}
	if res.FoundName.String() != "sub.example.com." {
		t.Errorf("FoundName = %q, want sub.example.com.", res.FoundName.String())
	}
}

func TestZoneFind_WildcardSynthesis(t *testing.T) {
	db := New(ModeZone)
	v, _ := db.NewVersion()
	db.AddRdataset(mustName(t, "*.example.com."), protocol.TypeA, v, mustSlab(t, protocol.TypeA, "192.0.2.9"), protocol.TrustAuthoritative, 300, 0, false)
	db.CloseVersion(v, true)

	cur := db.CurrentVersion()
	res, err := db.ZoneFind(mustName(t, "anything.example.com."), cur, protocol.TypeA, 0)
	if err != nil {
		t.Fatalf("ZoneFind: %v", err)
	}
	if res.Outcome != errortypes.Success || !res.Wildcard {
		t.Errorf("Outcome = %v, Wildcard = %v, want Success/true", res.Outcome, res.Wildcard)
	}
}

func TestCacheFind_NXDomainMonopolizesNode(t *testing.T) {
	db := New(ModeCache)
	v, _ := db.NewVersion()
	name := mustName(t, "ghost.example.com.")
	db.AddRdataset(name, protocol.TypeA, v, mustSlab(t, protocol.TypeA, "192.0.2.1"), protocol.TrustAdditional, 9999999999, 0, false)

	if err := db.AddNegativeCache(name, protocol.TypeANY, true, v, protocol.TrustAuthoritative, 9999999999); err != nil {
		t.Fatalf("AddNegativeCache(NXDOMAIN): %v", err)
	}
	db.CloseVersion(v, true)

	res, err := db.CacheFind(name, 0, protocol.TypeA)
	if err != nil {
		t.Fatalf("CacheFind: %v", err)
	}
	if res.Outcome != errortypes.NCacheNXDomain {
		t.Errorf("Outcome = %v, want NCacheNXDomain", res.Outcome)
	}
}

func TestCloseVersion_AbortIgnoresChangedHeaders(t *testing.T) {
	db := New(ModeZone)
	v, _ := db.NewVersion()
	name := mustName(t, "www.example.com.")
	db.AddRdataset(name, protocol.TypeA, v, mustSlab(t, protocol.TypeA, "192.0.2.1"), protocol.TrustAuthoritative, 300, 0, false)
	if err := db.CloseVersion(v, false); err != nil {
		t.Fatalf("CloseVersion(abort): %v", err)
	}

	cur := db.CurrentVersion()
	res, err := db.ZoneFind(name, cur, protocol.TypeA, 0)
	if err != nil {
		t.Fatalf("ZoneFind: %v", err)
	}
	// AddRdataset's AddNode call isn't rolled back by abort, so the node
	// itself still exists; its only header is IGNORE-marked, so the type
	// is unanswerable rather than the name not existing at all.
	if res.Outcome != errortypes.NXRRSet {
		t.Errorf("Outcome = %v, want NXRRSet (aborted write never became visible)", res.Outcome)
	}
}

// TestCloseVersion_AbortDoesNotOrphanSupersededData covers the modify-in-place
// abort case: a writer that supersedes existing committed data and then
// aborts must leave the pre-existing data visible, not just invisible new
// data on an empty node.
func TestCloseVersion_AbortDoesNotOrphanSupersededData(t *testing.T) {
	db := New(ModeZone)
	name := mustName(t, "www.example.com.")

	v1, _ := db.NewVersion()
	db.AddRdataset(name, protocol.TypeA, v1, mustSlab(t, protocol.TypeA, "192.0.2.1"), protocol.TrustAuthoritative, 300, 0, false)
	if err := db.CloseVersion(v1, true); err != nil {
		t.Fatalf("CloseVersion(commit v1): %v", err)
	}

	v2, _ := db.NewVersion()
	db.AddRdataset(name, protocol.TypeA, v2, mustSlab(t, protocol.TypeA, "192.0.2.2"), protocol.TrustAuthoritative, 300, 0, false)
	if err := db.CloseVersion(v2, false); err != nil {
		t.Fatalf("CloseVersion(abort v2): %v", err)
	}

	cur := db.CurrentVersion()
	res, err := db.ZoneFind(name, cur, protocol.TypeA, 0)
	if err != nil {
		t.Fatalf("ZoneFind: %v", err)
	}
	if res.Outcome != errortypes.Success {
		t.Fatalf("Outcome = %v, want Success (v1's data must survive v2's abort)", res.Outcome)
	}
	if got := rdata.ToText(res.Rdataset.Iterate()[0]); got != "192.0.2.1" {
		t.Errorf("rdata = %q, want 192.0.2.1 (v2's aborted rewrite must not be visible)", got)
	}
}

// TestZoneFind_OldSerialSeesPreSupersessionSnapshot exercises the down-chain
// walk directly: a reader pinned at the serial before an in-place rewrite
// must still see the data that was live at that serial, not NXRRSet.
func TestZoneFind_OldSerialSeesPreSupersessionSnapshot(t *testing.T) {
	db := New(ModeZone)
	name := mustName(t, "www.example.com.")

	v1, _ := db.NewVersion()
	db.AddRdataset(name, protocol.TypeA, v1, mustSlab(t, protocol.TypeA, "192.0.2.1"), protocol.TrustAuthoritative, 300, 0, false)
	if err := db.CloseVersion(v1, true); err != nil {
		t.Fatalf("CloseVersion(commit v1): %v", err)
	}
	oldReader := db.CurrentVersion()

	v2, _ := db.NewVersion()
	db.AddRdataset(name, protocol.TypeA, v2, mustSlab(t, protocol.TypeA, "192.0.2.2"), protocol.TrustAuthoritative, 300, 0, false)
	if err := db.CloseVersion(v2, true); err != nil {
		t.Fatalf("CloseVersion(commit v2): %v", err)
	}

	res, err := db.ZoneFind(name, oldReader, protocol.TypeA, 0)
	if err != nil {
		t.Fatalf("ZoneFind: %v", err)
	}
	if res.Outcome != errortypes.Success {
		t.Fatalf("Outcome = %v, want Success (reader pinned at v1's serial)", res.Outcome)
	}

	newReader := db.CurrentVersion()
	res2, err := db.ZoneFind(name, newReader, protocol.TypeA, 0)
	if err != nil {
		t.Fatalf("ZoneFind: %v", err)
	}
	if res2.Outcome != errortypes.Success {
		t.Fatalf("Outcome = %v, want Success (reader pinned at v2's serial)", res2.Outcome)
	}
}

// TestAddRdataset_ReclaimsIgnoredHeaderInsteadOfResurrecting verifies that a
// subsequent write to a (node, type) whose head header was left IGNORE by an
// aborted version physically drops it rather than treating it as live
// existing data a Merge could fold into.
func TestAddRdataset_ReclaimsIgnoredHeaderInsteadOfResurrecting(t *testing.T) {
	db := New(ModeZone)
	name := mustName(t, "www.example.com.")

	v1, _ := db.NewVersion()
	db.AddRdataset(name, protocol.TypeA, v1, mustSlab(t, protocol.TypeA, "192.0.2.1"), protocol.TrustAuthoritative, 300, 0, false)
	if err := db.CloseVersion(v1, false); err != nil {
		t.Fatalf("CloseVersion(abort v1): %v", err)
	}

	v2, _ := db.NewVersion()
	if err := db.AddRdataset(name, protocol.TypeA, v2, mustSlab(t, protocol.TypeA, "192.0.2.2"), protocol.TrustAuthoritative, 300, Merge, false); err != nil {
		t.Fatalf("AddRdataset(v2, Merge): %v", err)
	}
	if err := db.CloseVersion(v2, true); err != nil {
		t.Fatalf("CloseVersion(commit v2): %v", err)
	}

	cur := db.CurrentVersion()
	res, err := db.ZoneFind(name, cur, protocol.TypeA, 0)
	if err != nil {
		t.Fatalf("ZoneFind: %v", err)
	}
	if res.Outcome != errortypes.Success {
		t.Fatalf("Outcome = %v, want Success", res.Outcome)
	}
	if res.Rdataset.Count() != 1 {
		t.Errorf("Rdataset.Count() = %d, want 1 (aborted .1 must not have been merged back in)", res.Rdataset.Count())
	}
}
