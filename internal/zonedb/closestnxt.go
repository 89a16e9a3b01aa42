package zonedb

import (
	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// FindClosestNXT implements spec §4.6.7: for a secure zone, walk the chain
// backward from name's would-be insertion point; at each step require a
// node bearing both a live NXT and a live SIG(NXT). The first such node's
// owner name is the interval's lower bound, proving name's nonexistence. No
// match anywhere in the chain is BADDB (the zone claims to be secure but
// lacks a complete NXT chain).
func (db *DB) FindClosestNXT(name wire.Name, v *Version) (Result, error) {
	pos := db.tree.SeekIndex(name)
	for i := pos - 1; i >= 0; i-- {
		node := db.tree.At(i)
		nd, _ := node.Data.(*nodeData)
		if nd == nil {
			continue
		}
		nxt := nd.visibleZone(plainType(protocol.TypeNXT), v.serial)
		sig := nd.visibleZone(plainType(protocol.TypeSIG), v.serial)
		if nxt != nil && sig != nil {
			return Result{
				Outcome:     errortypes.NXDomain,
				Node:        node,
				FoundName:   node.Name,
				Rdataset:    nxt.slab,
				SigRdataset: sig.slab,
			}, nil
		}
	}
	// Nodes did precede name but none carried a live NXT+SIG: the zone's NXT
	// chain is broken. When pos is 0 nothing precedes name, so the search
	// wraps around instead.
	if pos > 0 {
		return Result{}, &errortypes.IntegrityError{Operation: "find_closest_nxt", Message: "no NXT chain predecessor carries a live NXT+SIG(NXT)"}
	}
	// Wrap around to the end of the chain (the apex's NXT covers the top of
	// the namespace down through the last name).
	for i := db.tree.Len() - 1; i >= 0; i-- {
		node := db.tree.At(i)
		nd, _ := node.Data.(*nodeData)
		if nd == nil {
			continue
		}
		nxt := nd.visibleZone(plainType(protocol.TypeNXT), v.serial)
		sig := nd.visibleZone(plainType(protocol.TypeSIG), v.serial)
		if nxt != nil && sig != nil {
			return Result{
				Outcome:     errortypes.NXDomain,
				Node:        node,
				FoundName:   node.Name,
				Rdataset:    nxt.slab,
				SigRdataset: sig.slab,
			}, nil
		}
	}
	return Result{}, &errortypes.IntegrityError{Operation: "find_closest_nxt", Message: "secure zone has no node with a live NXT+SIG(NXT)"}
}
