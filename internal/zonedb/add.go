package zonedb

import (
	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/rbt"
	"github.com/joshuafuller/zoneguard/internal/rdataslab"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// addZoneLocked implements spec §4.6.3. Caller holds the tree lock exclusive
// and node's hashed lock.
func (db *DB) addZoneLocked(node *rbt.Node, nd *nodeData, name wire.Name, rrtype protocol.RRType, v *Version, slab rdataslab.Slab, ttl int64, opts AddOptions, loading bool) error {
	ht := plainType(rrtype)
	existing := nd.reclaim(ht)

	if existing != nil && !existing.nonexistent() {
		if opts&Merge != 0 {
			merged, err := rdataslab.Merge(existing.slab, slab, opts&Force != 0)
			if err != nil {
				if err == errortypes.ErrUnchanged {
					return errortypes.ErrUnchanged
				}
				return err
			}
			slab = merged
		}
		nd.unlink(existing)
	}

	h := &header{htype: ht, class: protocol.ClassIN, serial: v.serial, ttl: ttl, trust: protocol.TrustAuthoritative, slab: slab}
	if existing != nil {
		h.down = existing
	}
	nd.link(h)
	nd.dirty = true

	if !loading {
		v.record(nd, h)
	}
	return nil
}

// addCacheLocked implements spec §4.6.4, layered on top of the zone-mode
// structural rules (same chain/down-link mechanics, different trust and
// negative-cache gating).
func (db *DB) addCacheLocked(nd *nodeData, rrtype protocol.RRType, v *Version, slab rdataslab.Slab, trust protocol.Trust, ttl int64, opts AddOptions) error {
	return db.addCacheLockedType(nd, plainType(rrtype), v, slab, trust, ttl, opts)
}

// addCacheLockedType is addCacheLocked generalized to an arbitrary
// headerType, including the negative-cache base=0 encodings AddRdataset's
// (name, rrtype) surface cannot express directly (spec §3's reserved
// base=0/covers encoding for NXDOMAIN and NXRRSET).
func (db *DB) addCacheLockedType(nd *nodeData, ht headerType, v *Version, slab rdataslab.Slab, trust protocol.Trust, ttl int64, opts AddOptions) error {
	existing := nd.reclaim(ht)

	if nxd := nd.reclaim(negativeNXDomain()); nxd != nil && !nxd.stale() {
		if trust < nxd.trust {
			return errortypes.ErrUnchanged
		}
	}

	if existing != nil && !existing.nonexistent() {
		if trust < existing.trust {
			return errortypes.ErrUnchanged
		}
		if opts&Merge != 0 {
			if existing.nonexistent() || isNegativeSlabPlaceholder(existing) {
				return errortypes.ErrUnchanged
			}
			merged, err := rdataslab.Merge(existing.slab, slab, opts&Force != 0)
			if err != nil {
				if err == errortypes.ErrUnchanged {
					return errortypes.ErrUnchanged
				}
				return err
			}
			slab = merged
		}
		nd.unlink(existing)
	}

	h := &header{htype: ht, class: protocol.ClassIN, serial: v.serial, ttl: ttl, trust: trust, slab: slab}
	if existing != nil {
		h.down = existing
	}
	nd.link(h)
	nd.dirty = true
	v.record(nd, h)

	if ht.isNXDomain() {
		db.markSiblingsStale(nd, h)
	}
	return nil
}

// markSiblingsStale implements the NXDOMAIN negative-cache monopoly (spec
// §4.6.4): once an NXDOMAIN entry lands at a node, every other header there
// is demoted to STALE so nothing else is visible until the NXDOMAIN expires.
func (db *DB) markSiblingsStale(nd *nodeData, nxd *header) {
	for h := nd.chain; h != nil; h = h.next {
		if h == nxd {
			continue
		}
		h.ttl = 0
		h.attr |= protocol.AttrStale
	}
	nd.dirty = true
}

func isNegativeSlabPlaceholder(h *header) bool { return h.htype.isNegative() }
