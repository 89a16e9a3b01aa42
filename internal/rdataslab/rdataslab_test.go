package rdataslab

import (
	"errors"
	"testing"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/rdata"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

func mustA(t *testing.T, ip string) rdata.Rdata {
	t.Helper()
	r, err := rdata.FromText(protocol.TypeA, protocol.ClassIN, []string{ip}, wire.Root, false)
	if err != nil {
		t.Fatalf("FromText(%q): %v", ip, err)
	}
	return r
}

func TestFromRdataset_SortsAndDedupes(t *testing.T) {
	rrs := []rdata.Rdata{mustA(t, "192.0.2.3"), mustA(t, "192.0.2.1"), mustA(t, "192.0.2.1")}
	slab, err := FromRdataset(rrs)
	if err != nil {
		t.Fatalf("FromRdataset: %v", err)
	}
	if slab.Count() != 2 {
		t.Fatalf("Count() = %d, want 2 (duplicate discarded)", slab.Count())
	}
	iter := slab.Iterate()
	if rdata.ToText(iter[0]) != "192.0.2.1" || rdata.ToText(iter[1]) != "192.0.2.3" {
		t.Errorf("entries not in canonical order: %v", iter)
	}
}

func TestMerge_UnionAndUnchanged(t *testing.T) {
	a, _ := FromRdataset([]rdata.Rdata{mustA(t, "192.0.2.1")})
	b, _ := FromRdataset([]rdata.Rdata{mustA(t, "192.0.2.1"), mustA(t, "192.0.2.2")})

	merged, err := Merge(a, b, false)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", merged.Count())
	}

	if _, err := Merge(merged, a, false); !errors.Is(err, errortypes.ErrUnchanged) {
		t.Errorf("Merge(superset, subset) = %v, want ErrUnchanged", err)
	}
}

func TestSubtract_DifferenceAndUnchanged(t *testing.T) {
	a, _ := FromRdataset([]rdata.Rdata{mustA(t, "192.0.2.1"), mustA(t, "192.0.2.2")})
	b, _ := FromRdataset([]rdata.Rdata{mustA(t, "192.0.2.2")})

	diff, err := Subtract(a, b)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if diff.Count() != 1 || rdata.ToText(diff.Iterate()[0]) != "192.0.2.1" {
		t.Errorf("Subtract result = %v, want [192.0.2.1]", diff.Iterate())
	}

	other, _ := FromRdataset([]rdata.Rdata{mustA(t, "192.0.2.9")})
	if _, err := Subtract(a, other); !errors.Is(err, errortypes.ErrUnchanged) {
		t.Errorf("Subtract(a, disjoint) = %v, want ErrUnchanged", err)
	}
}

func TestSize_MatchesEncoding(t *testing.T) {
	slab, _ := FromRdataset([]rdata.Rdata{mustA(t, "192.0.2.1"), mustA(t, "192.0.2.2")})
	if got, want := len(slab.Encode()), slab.Size(); got != want {
		t.Errorf("Encode() length = %d, Size() = %d, want equal", got, want)
	}
}
