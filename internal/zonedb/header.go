// Package zonedb implements the red-black-tree-indexed zone and cache
// database (spec §4.6): MVCC versioning with commit/rollback, per-node
// rdataset chains carrying history, cache staleness/trust semantics, and
// DNSSEC-aware lookup. Grounded on BIND9's lib/dns/rbtdb.c version/header
// chain design, reshaped onto internal/rbt and internal/rdataslab.
package zonedb

import (
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/rdataslab"
)

// headerType packs a header's (base type, covered type) pair. A negative
// cache record uses base=0: covers=TypeANY means NXDOMAIN, covers=T means
// NXRRSET for T (spec §3, Rdatasetheader).
type headerType struct {
	base   protocol.RRType
	covers protocol.RRType
}

func negativeNXDomain() headerType { return headerType{base: 0, covers: protocol.TypeANY} }
func negativeNXRRSet(t protocol.RRType) headerType { return headerType{base: 0, covers: t} }
func plainType(t protocol.RRType) headerType       { return headerType{base: t} }

func (h headerType) isNegative() bool { return h.base == 0 }
func (h headerType) isNXDomain() bool { return h.base == 0 && h.covers == protocol.TypeANY }

// header is one per-version record in a node's type chain (spec §3,
// Rdatasetheader). next links sibling types at the same node; down links
// prior versions of the same type, most recent first.
type header struct {
	htype   headerType
	class   protocol.Class
	serial  uint32
	ttl     int64 // absolute unix expiry in cache mode, relative TTL seconds in zone mode
	trust   protocol.Trust
	attr    protocol.HeaderAttr
	slab    rdataslab.Slab
	sigSlab rdataslab.Slab // SIG(type) rdataset riding alongside, if any
	refs    int            // blocks physical unlink while non-zero; no code in this package increments it

	next *header
	down *header
}

func (h *header) nonexistent() bool { return h.attr&protocol.AttrNonexistent != 0 }
func (h *header) stale() bool       { return h.attr&protocol.AttrStale != 0 }
func (h *header) ignored() bool     { return h.attr&protocol.AttrIgnore != 0 }
func (h *header) retained() bool    { return h.attr&protocol.AttrRetain != 0 }

// liveAtZone reports whether h is visible to a reader pinned at serial in
// zone mode: committed no later than serial, not a rollback ghost, not a
// tombstone.
func (h *header) liveAtZone(serial uint32) bool {
	return h.serial <= serial && !h.ignored() && !h.nonexistent()
}

// liveAtCache reports whether h is visible to a cache reader at unix time
// now: not expired, not a tombstone. Staleness alone does not hide a header
// from the walk (spec §4.6.6); callers decide whether to serve or skip stale
// data.
func (h *header) liveAtCache(now int64) bool {
	return h.ttl > now && !h.nonexistent()
}

// nodeData is the payload internal/rbt.Node.Data holds for every named node
// in a zone or cache tree.
type nodeData struct {
	chain *header // head of the sibling-type linked list
	dirty bool
	refs  int  // external references; no code in this package increments it
	apex  bool // true at the zone's origin node; see DB.SetApex
}

func (n *nodeData) find(t headerType) *header {
	for h := n.chain; h != nil; h = h.next {
		if h.htype == t {
			return h
		}
	}
	return nil
}

// visibleZone returns the newest header of type t visible to a zone-mode
// reader pinned at serial: it walks down from the chain head past any
// IGNORE header (an aborted write, invisible to every reader regardless of
// serial) and past any header committed after serial, stopping at the
// first header that is neither. If that header is a tombstone
// (AttrNonexistent), the type is visible as "does not exist" at serial and
// the walk stops there rather than exposing older data it superseded
// (spec §3 "readers see exactly those headers with serial <= their.serial").
func (n *nodeData) visibleZone(t headerType, serial uint32) *header {
	for h := n.find(t); h != nil; h = h.down {
		if h.ignored() {
			continue
		}
		if h.serial > serial {
			continue
		}
		if h.nonexistent() {
			return nil
		}
		return h
	}
	return nil
}

// visibleCache returns the chain head of type t for a cache-mode reader at
// unix time now, skipping past a leading run of IGNORE headers left by an
// aborted write. Cache mode has no reader-pinned serial to honor beyond
// that: once the walk reaches a non-ignored header, ordinary expiry
// (liveAtCache) decides whether it's visible, with no further fallback to
// older down-chain entries.
func (n *nodeData) visibleCache(t headerType, now int64) *header {
	h := n.find(t)
	for h != nil && h.ignored() {
		h = h.down
	}
	if h != nil && h.liveAtCache(now) {
		return h
	}
	return nil
}

// reclaim drops a leading run of IGNORE headers of type t from n's sibling
// chain, promoting the first non-ignored predecessor (if any) into the
// vacated chain slot. Called by writers touching a node, implementing spec
// §4.6.2's "space is reclaimed when the node is next touched" — an aborted
// write's header is never physically unlinked by CloseVersion itself, only
// marked IGNORE, so the next writer to touch this (node, type) is what
// actually reclaims it. Caller must hold the node's lock.
func (n *nodeData) reclaim(t headerType) *header {
	head := n.find(t)
	for head != nil && head.ignored() {
		n.unlink(head)
		head = head.down
		if head != nil {
			n.link(head)
		}
	}
	return head
}

// unlink splices h out of n's sibling chain; it does not look at h's attr,
// so callers that must skip IGNORE entries per spec §4.6.3 step 2 do so
// before calling this (see reclaim).
func (n *nodeData) unlink(h *header) {
	if n.chain == h {
		n.chain = h.next
		return
	}
	for p := n.chain; p != nil; p = p.next {
		if p.next == h {
			p.next = h.next
			return
		}
	}
}

func (n *nodeData) link(h *header) {
	h.next = n.chain
	n.chain = h
}
