package zonedb

import (
	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/rbt"
	"github.com/joshuafuller/zoneguard/internal/rdata"
	"github.com/joshuafuller/zoneguard/internal/rdataslab"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// FindOptions bitset for ZoneFind/CacheFind (spec §4.6.5/§4.6.6).
type FindOptions uint8

const (
	GlueOK FindOptions = 1 << iota
	ValidateGlue
	NoWild
	NoExact
)

// Result is ZoneFind/CacheFind's output (spec §4.6.5 "(result, node?,
// foundname?, rdataset?, sigrdataset?)").
type Result struct {
	Outcome     errortypes.Outcome
	Node        *rbt.Node
	FoundName   wire.Name
	Rdataset    rdataslab.Slab
	SigRdataset rdataslab.Slab
	Wildcard    bool
}

type zonecutHit struct {
	node   *rbt.Node
	name   wire.Name
	dname  bool
	height int
}

// ZoneFind implements spec §4.6.5.
func (db *DB) ZoneFind(name wire.Name, v *Version, rrtype protocol.RRType, opts FindOptions) (Result, error) {
	res, err := db.zoneFind(name, v, rrtype, opts)
	if err == nil {
		db.recordOutcome(res.Outcome)
	}
	return res, err
}

func (db *DB) zoneFind(name wire.Name, v *Version, rrtype protocol.RRType, opts FindOptions) (Result, error) {
	db.tree.RLock()
	releaseTree := assertAcquire(levelTree)
	defer func() { releaseTree(); db.tree.RUnlock() }()

	var cut *zonecutHit
	height := 0
	status, node, err := rbt.FindNode(db.tree, name, rbt.EmptyData, func(n *rbt.Node) rbt.CallbackResult {
		height++
		nd, _ := n.Data.(*nodeData)
		if nd == nil {
			return rbt.Continue
		}
		if cut == nil {
			if dn := nd.visibleZone(plainType(protocol.TypeDNAME), v.serial); dn != nil {
				cut = &zonecutHit{node: n, name: n.Name, dname: true, height: height}
			} else if ns := nd.visibleZone(plainType(protocol.TypeNS), v.serial); ns != nil && !isApex(n) {
				cut = &zonecutHit{node: n, name: n.Name, height: height}
			}
		}
		return rbt.Continue
	})
	if err != nil {
		return Result{}, err
	}

	switch status {
	case rbt.Success:
		return db.zoneFindExact(node, name, v, rrtype, opts, cut)
	default:
		return db.zoneFindPartial(name, v, opts, cut)
	}
}

func (db *DB) zoneFindExact(node *rbt.Node, name wire.Name, v *Version, rrtype protocol.RRType, opts FindOptions, cut *zonecutHit) (Result, error) {
	nd, _ := node.Data.(*nodeData)
	if nd == nil {
		return Result{}, nil
	}

	if cut != nil && cut.node == node {
		// queried name is exactly the zonecut.
		if cut.dname {
			return Result{Outcome: errortypes.DNAME, Node: node, FoundName: name}, nil
		}
		ns := nd.visibleZone(plainType(protocol.TypeNS), v.serial)
		switch rrtype {
		case protocol.TypeNS, protocol.TypeKEY, protocol.TypeNXT, protocol.TypeANY:
			// fall through to normal lookup below: the NS itself is answerable here.
		default:
			if opts&GlueOK == 0 {
				return Result{Outcome: errortypes.Delegation, Node: node, FoundName: name, Rdataset: ns.slab}, nil
			}
		}
	} else if cut != nil {
		// name is strictly below the topmost cut but the walk reached an
		// exact node anyway (glue data stored beneath a delegation).
		if opts&ValidateGlue != 0 {
			ns := nd.visibleZone(plainType(protocol.TypeNS), v.serial)
			if !referentOf(ns.slab, name) {
				return Result{Outcome: errortypes.Delegation, Node: cut.node, FoundName: cut.name}, nil
			}
		}
	}

	if h := nd.visibleZone(plainType(rrtype), v.serial); h != nil {
		res := Result{Outcome: errortypes.Success, Node: node, FoundName: name, Rdataset: h.slab}
		if sig := nd.visibleZone(plainType(protocol.TypeSIG), v.serial); sig != nil {
			res.SigRdataset = sig.slab
		}
		if cut != nil && cut.node != node {
			res.Outcome = errortypes.Glue
		}
		return res, nil
	}

	if cn := nd.visibleZone(plainType(protocol.TypeCNAME), v.serial); cn != nil &&
		rrtype != protocol.TypeCNAME && rrtype != protocol.TypeANY && rrtype != protocol.TypeKEY && rrtype != protocol.TypeNXT {
		return Result{Outcome: errortypes.CNAME, Node: node, FoundName: name, Rdataset: cn.slab}, nil
	}

	res := Result{Outcome: errortypes.NXRRSet, Node: node, FoundName: name}
	if db.secure {
		if nxt := nd.visibleZone(plainType(protocol.TypeNXT), v.serial); nxt != nil {
			res.Rdataset = nxt.slab
			if sig := nd.visibleZone(plainType(protocol.TypeSIG), v.serial); sig != nil {
				res.SigRdataset = sig.slab
			}
		}
	}
	return res, nil
}

func (db *DB) zoneFindPartial(name wire.Name, v *Version, opts FindOptions, cut *zonecutHit) (Result, error) {
	if cut != nil {
		if cut.dname {
			return Result{Outcome: errortypes.DNAME, Node: cut.node, FoundName: cut.name}, nil
		}
		nd, _ := cut.node.Data.(*nodeData)
		ns := nd.visibleZone(plainType(protocol.TypeNS), v.serial)
		var slab rdataslab.Slab
		if ns != nil {
			slab = ns.slab
		}
		return Result{Outcome: errortypes.Delegation, Node: cut.node, FoundName: cut.name, Rdataset: slab}, nil
	}

	if opts&NoWild == 0 {
		if res, ok, err := db.tryWildcard(name, v); err != nil {
			return Result{}, err
		} else if ok {
			return res, nil
		}
	}

	if db.secure {
		return db.FindClosestNXT(name, v)
	}
	return Result{Outcome: errortypes.NXDomain, FoundName: name}, nil
}

// tryWildcard walks name's ancestor chain looking for one marked Wild,
// synthesizes "*.<ancestor>", and retries the lookup there (spec §4.6.5
// step 3).
func (db *DB) tryWildcard(name wire.Name, v *Version) (Result, bool, error) {
	labels := name.LabelCount()
	for drop := 1; drop < labels; drop++ {
		_, ancestorSuffix := name.SplitAt(drop)
		ancestorNode, ok := db.tree.Get(ancestorSuffix)
		if !ok {
			continue
		}
		if !ancestorNode.Wild {
			continue
		}
		if ad, _ := ancestorNode.Data.(*nodeData); ad != nil && ad.chain != nil {
			// the intervening ancestor itself answers something; a wildcard
			// below it never applies (spec: "if the intervening ancestor is
			// not itself active").
			continue
		}
		star, err := wire.NameFromText("*", wire.Root, true)
		if err != nil {
			return Result{}, false, err
		}
		synthesized := wire.Concat(star, ancestorSuffix)
		node, ok := db.tree.Get(synthesized)
		if !ok {
			continue
		}
		nd, _ := node.Data.(*nodeData)
		if nd == nil || nd.chain == nil {
			continue
		}
		return Result{Outcome: errortypes.Success, Node: node, FoundName: name, Wildcard: true}, true, nil
	}
	return Result{}, false, nil
}

// referentOf reports whether name is (or is a subdomain of) one of ns's
// delegate server names — used by VALIDATEGLUE (spec §4.6.5 step 5).
func referentOf(ns rdataslab.Slab, name wire.Name) bool {
	for _, r := range ns.Iterate() {
		if sn, ok := rdata.TargetName(r); ok && name.IsSubdomainOf(sn) {
			return true
		}
	}
	return false
}
