package zonedb

import (
	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/rbt"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// FindZoneCut walks the same callback-driven RBT path ZoneFind uses but
// stops at the first delegation encountered without requiring an exact
// match at name itself — a first-class operation in its own right (not a
// stub), for callers such as an external resolver choosing where to send a
// referral. ZoneFind does not call it: it tracks the zone cut in its own
// find callback.
func (db *DB) FindZoneCut(name wire.Name, v *Version) (Result, error) {
	db.tree.RLock()
	releaseTree := assertAcquire(levelTree)
	defer func() { releaseTree(); db.tree.RUnlock() }()

	var cut *zonecutHit
	height := 0
	_, _, err := rbt.FindNode(db.tree, name, rbt.EmptyData, func(n *rbt.Node) rbt.CallbackResult {
		height++
		nd, _ := n.Data.(*nodeData)
		if nd == nil {
			return rbt.Continue
		}
		if cut == nil {
			if dn := nd.visibleZone(plainType(protocol.TypeDNAME), v.serial); dn != nil {
				cut = &zonecutHit{node: n, name: n.Name, dname: true, height: height}
				return rbt.StopPartial
			}
			if ns := nd.visibleZone(plainType(protocol.TypeNS), v.serial); ns != nil && !isApex(n) {
				cut = &zonecutHit{node: n, name: n.Name, height: height}
				return rbt.StopPartial
			}
		}
		return rbt.Continue
	})
	if err != nil {
		return Result{}, err
	}
	if cut == nil {
		return Result{Outcome: errortypes.NXDomain, FoundName: name}, nil
	}
	outcome := errortypes.Delegation
	if cut.dname {
		outcome = errortypes.DNAME
	}
	nd, _ := cut.node.Data.(*nodeData)
	res := Result{Outcome: outcome, Node: cut.node, FoundName: cut.name}
	if h := nd.visibleZone(plainType(protocol.TypeNS), v.serial); h != nil {
		res.Rdataset = h.slab
	}
	return res, nil
}
