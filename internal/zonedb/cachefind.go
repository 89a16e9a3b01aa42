package zonedb

import (
	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/rbt"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// CacheFind implements spec §4.6.6: the zone-find walk's structure, but
// "live" means not-expired rather than version-gated, stale entries met on
// the way down are unlinked or flagged depending on reference count, and a
// name entirely absent falls back to the deepest ancestor carrying NS as a
// delegation.
func (db *DB) CacheFind(name wire.Name, now int64, rrtype protocol.RRType) (Result, error) {
	res, err := db.cacheFind(name, now, rrtype)
	if err == nil {
		db.recordOutcome(res.Outcome)
	}
	return res, err
}

func (db *DB) cacheFind(name wire.Name, now int64, rrtype protocol.RRType) (Result, error) {
	db.tree.RLock()
	releaseTree := assertAcquire(levelTree)
	defer func() { releaseTree(); db.tree.RUnlock() }()

	var deepestNS *zonecutHit
	height := 0
	status, node, err := rbt.FindNode(db.tree, name, rbt.EmptyData, func(n *rbt.Node) rbt.CallbackResult {
		height++
		nd, _ := n.Data.(*nodeData)
		if nd == nil {
			return rbt.Continue
		}
		db.sweepStale(n.Name, nd, now)
		if ns := nd.visibleCache(plainType(protocol.TypeNS), now); ns != nil {
			deepestNS = &zonecutHit{node: n, name: n.Name, height: height}
		}
		return rbt.Continue
	})
	if err != nil {
		return Result{}, err
	}

	if status == rbt.Success {
		nd, _ := node.Data.(*nodeData)
		db.sweepStale(node.Name, nd, now)

		if nxd := nd.visibleCache(negativeNXDomain(), now); nxd != nil {
			return Result{Outcome: errortypes.NCacheNXDomain, Node: node, FoundName: name, Rdataset: nxd.slab}, nil
		}
		if nxr := nd.visibleCache(negativeNXRRSet(rrtype), now); nxr != nil {
			return Result{Outcome: errortypes.NCacheNXRRSet, Node: node, FoundName: name, Rdataset: nxr.slab}, nil
		}
		if h := nd.visibleCache(plainType(rrtype), now); h != nil {
			return Result{Outcome: errortypes.Success, Node: node, FoundName: name, Rdataset: h.slab}, nil
		}
		if cn := nd.visibleCache(plainType(protocol.TypeCNAME), now); cn != nil &&
			rrtype != protocol.TypeCNAME && rrtype != protocol.TypeANY {
			return Result{Outcome: errortypes.CNAME, Node: node, FoundName: name, Rdataset: cn.slab}, nil
		}
		return Result{Outcome: errortypes.NXRRSet, Node: node, FoundName: name}, nil
	}

	if deepestNS != nil {
		nd, _ := deepestNS.node.Data.(*nodeData)
		ns := nd.visibleCache(plainType(protocol.TypeNS), now)
		return Result{Outcome: errortypes.Delegation, Node: deepestNS.node, FoundName: deepestNS.name, Rdataset: ns.slab}, nil
	}
	return Result{Outcome: errortypes.NXDomain, FoundName: name}, nil
}

// sweepStale implements spec §4.6.6's stale-entry handling: a stale header
// with no external references is physically unlinked; one still referenced
// by a live cursor is left in place (already STALE/dirty) rather than
// pulled out from under the reader. Takes the node's hashed lock for the
// duration of the mutation, per the tree→node lock order already held by
// the RLock'd caller.
func (db *DB) sweepStale(name wire.Name, nd *nodeData, now int64) {
	nlock := db.nodeLockFor(key(name))
	nlock.Lock()
	release := assertAcquire(levelNode)
	defer func() { release(); nlock.Unlock() }()

	var next *header
	for h := nd.chain; h != nil; h = next {
		next = h.next
		if h.ttl <= now && !h.stale() {
			h.attr |= protocol.AttrStale
			nd.dirty = true
		}
		if h.stale() && h.refs == 0 {
			nd.unlink(h)
		}
	}
}
