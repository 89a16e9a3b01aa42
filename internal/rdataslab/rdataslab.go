// Package rdataslab implements the compact on-the-wire representation of a
// resource-record set: a count-prefixed sequence of canonically sorted,
// length-prefixed rdata entries (spec §4.4).
package rdataslab

import (
	"sort"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/rdata"
)

// Slab is an immutable value: a sorted, deduplicated collection of rdata for
// a single (owner, type, class). The zero Slab is empty.
type Slab struct {
	entries [][]byte // each already-serialized wire-form rdata, canonically sorted
	typed   []rdata.Rdata
}

// Count returns the number of rdata entries.
func (s Slab) Count() int { return len(s.entries) }

// Size returns the slab's encoded byte length: a 2-byte count, then for each
// entry a 2-byte length followed by the entry's bytes.
func (s Slab) Size() int {
	total := 2
	for _, e := range s.entries {
		total += 2 + len(e)
	}
	return total
}

// Iterate returns the slab's rdata in canonical order.
func (s Slab) Iterate() []rdata.Rdata { return s.typed }

// Encode writes the slab's count+length-framed wire representation.
func (s Slab) Encode() []byte {
	out := make([]byte, 0, s.Size())
	out = append(out, byte(len(s.entries)>>8), byte(len(s.entries)))
	for _, e := range s.entries {
		out = append(out, byte(len(e)>>8), byte(len(e)))
		out = append(out, e...)
	}
	return out
}

// FromRdataset collects every rdata in rrs, sorts by the type's canonical
// comparator, and discards exact duplicates (spec §4.4).
func FromRdataset(rrs []rdata.Rdata) (Slab, error) {
	if len(rrs) == 0 {
		return Slab{}, nil
	}
	buf := make([][]byte, len(rrs))
	for i, r := range rrs {
		b, err := encodeOne(r)
		if err != nil {
			return Slab{}, err
		}
		buf[i] = b
	}
	sorted := append([]rdata.Rdata{}, rrs...)
	pairs := make([]pair, len(rrs))
	for i := range rrs {
		pairs[i] = pair{r: sorted[i], b: buf[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return rdata.Compare(pairs[i].r, pairs[j].r) < 0 })

	var entries [][]byte
	var typed []rdata.Rdata
	for i, p := range pairs {
		if i > 0 && rdata.Compare(pairs[i-1].r, p.r) == 0 {
			continue
		}
		entries = append(entries, p.b)
		typed = append(typed, p.r)
	}
	return Slab{entries: entries, typed: typed}, nil
}

type pair struct {
	r rdata.Rdata
	b []byte
}

func encodeOne(r rdata.Rdata) ([]byte, error) {
	buf := newCanonicalBuffer()
	if err := rdata.ToWire(r, buf, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Merge produces the union of a and b in canonical order (spec §4.4). If a
// already contains every element of b, it returns ErrUnchanged unless force
// is set, mirroring the TTL-only-change escape hatch in BIND9's
// dns_rdataslab_merge.
func Merge(a, b Slab, force bool) (Slab, error) {
	merged := mergeEntries(a, b)
	if !force && len(merged.entries) == len(a.entries) {
		return a, errortypes.ErrUnchanged
	}
	return merged, nil
}

func mergeEntries(a, b Slab) Slab {
	var entries [][]byte
	var typed []rdata.Rdata
	i, j := 0, 0
	for i < len(a.entries) && j < len(b.entries) {
		c := rdata.Compare(a.typed[i], b.typed[j])
		switch {
		case c < 0:
			entries = append(entries, a.entries[i])
			typed = append(typed, a.typed[i])
			i++
		case c > 0:
			entries = append(entries, b.entries[j])
			typed = append(typed, b.typed[j])
			j++
		default:
			entries = append(entries, a.entries[i])
			typed = append(typed, a.typed[i])
			i++
			j++
		}
	}
	for ; i < len(a.entries); i++ {
		entries = append(entries, a.entries[i])
		typed = append(typed, a.typed[i])
	}
	for ; j < len(b.entries); j++ {
		entries = append(entries, b.entries[j])
		typed = append(typed, b.typed[j])
	}
	return Slab{entries: entries, typed: typed}
}

// Subtract produces a minus b preserving order (spec §4.4). An empty result
// reports NXRRSET via errortypes.Outcome-style signaling is left to the
// caller (the zone database interprets "empty slab" as NXRRSET); Subtract
// itself reports ErrUnchanged when b removes nothing from a.
func Subtract(a, b Slab) (Slab, error) {
	var entries [][]byte
	var typed []rdata.Rdata
	bi := 0
	removed := false
	for i := range a.entries {
		for bi < len(b.entries) && rdata.Compare(b.typed[bi], a.typed[i]) < 0 {
			bi++
		}
		if bi < len(b.entries) && rdata.Compare(b.typed[bi], a.typed[i]) == 0 {
			removed = true
			continue
		}
		entries = append(entries, a.entries[i])
		typed = append(typed, a.typed[i])
	}
	if !removed {
		return a, errortypes.ErrUnchanged
	}
	return Slab{entries: entries, typed: typed}, nil
}
