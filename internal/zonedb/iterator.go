package zonedb

import (
	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/rbt"
	"github.com/joshuafuller/zoneguard/internal/rdata"
	"github.com/joshuafuller/zoneguard/internal/rdataslab"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// RdatasetCursor is a single-pass iterator over one rdataslab.Slab (spec
// §4.6.8): captured (count, position) state; First/Next walk sorted rdata;
// Current materializes a view without copying the slab. It is not cloneable
// mid-iteration except via Reset.
type RdatasetCursor struct {
	slab rdataslab.Slab
	pos  int // -1 before First, len(entries) after exhaustion
}

// NewRdatasetCursor returns a cursor positioned before the first entry.
func NewRdatasetCursor(slab rdataslab.Slab) *RdatasetCursor {
	return &RdatasetCursor{slab: slab, pos: -1}
}

// First positions the cursor at the first entry.
func (c *RdatasetCursor) First() errortypes.Outcome {
	if c.slab.Count() == 0 {
		c.pos = 0
		return errortypes.NoMore
	}
	c.pos = 0
	return errortypes.Success
}

// Next advances the cursor one entry.
func (c *RdatasetCursor) Next() errortypes.Outcome {
	if c.pos < 0 {
		return c.First()
	}
	c.pos++
	if c.pos >= c.slab.Count() {
		return errortypes.NoMore
	}
	return errortypes.Success
}

// Current returns the rdata at the cursor's position without copying.
func (c *RdatasetCursor) Current() (rdata.Rdata, bool) {
	if c.pos < 0 || c.pos >= c.slab.Count() {
		return nil, false
	}
	return c.slab.Iterate()[c.pos], true
}

// Reset returns the cursor to its pre-First state; this is the only
// supported way to restart iteration mid-walk.
func (c *RdatasetCursor) Reset() { c.pos = -1 }

// DBIterator wraps an RBT chain for ordered whole-database traversal (spec
// §4.6.8): First/Last/Seek/Next/Prev/Current, Pause/Resume, and NEWORIGIN
// signaling in relative-name mode.
type DBIterator struct {
	tree    *rbt.Tree
	origin  wire.Name
	pos     int
	pinned  *rbt.Node // node Pause captured; re-seeked on Resume
	paused  bool
	relName bool
}

// NewDBIterator returns an iterator over db's tree rooted at origin. When
// relName is true, Next signals NEWORIGIN when it steps off a zone-cut node.
// Current reports absolute names in either mode, and Prev never signals
// NEWORIGIN.
func (db *DB) NewDBIterator(origin wire.Name, relName bool) *DBIterator {
	return &DBIterator{tree: db.tree, origin: origin, pos: -1, relName: relName}
}

// First positions the iterator at the lexically-first node.
func (it *DBIterator) First() errortypes.Outcome {
	it.paused = false
	it.pinned = nil
	if it.tree.Len() == 0 {
		return errortypes.NoMore
	}
	it.pos = 0
	return errortypes.Success
}

// Last positions the iterator at the lexically-last node.
func (it *DBIterator) Last() errortypes.Outcome {
	it.paused = false
	it.pinned = nil
	if it.tree.Len() == 0 {
		return errortypes.NoMore
	}
	it.pos = it.tree.Len() - 1
	return errortypes.Success
}

// Seek positions the iterator at name, or the node that would follow it in
// canonical order if name is absent.
func (it *DBIterator) Seek(name wire.Name) errortypes.Outcome {
	it.paused = false
	it.pinned = nil
	idx := it.tree.SeekIndex(name)
	if idx >= it.tree.Len() {
		it.pos = it.tree.Len()
		return errortypes.NoMore
	}
	it.pos = idx
	return errortypes.Success
}

// Next advances to the next node in canonical order, reporting NEWORIGIN if
// the step crosses a zone cut while relName mode is active.
func (it *DBIterator) Next() errortypes.Outcome {
	it.resumeIfPaused()
	if it.pos < 0 {
		return it.First()
	}
	prevNode := it.tree.At(it.pos)
	it.pos++
	if it.pos >= it.tree.Len() {
		return errortypes.NoMore
	}
	if it.relName && prevNode != nil && prevNode.FindCallback {
		return errortypes.NewOrigin
	}
	return errortypes.Success
}

// Prev retreats to the previous node in canonical order.
func (it *DBIterator) Prev() errortypes.Outcome {
	it.resumeIfPaused()
	if it.pos <= 0 {
		it.pos = -1
		return errortypes.NoMore
	}
	it.pos--
	return errortypes.Success
}

// Current returns the node and name at the iterator's position.
func (it *DBIterator) Current() (*rbt.Node, wire.Name, bool) {
	it.resumeIfPaused()
	n := it.tree.At(it.pos)
	if n == nil {
		return nil, wire.Name{}, false
	}
	return n, n.Name, true
}

// Pause pins the current node by reference (spec §4.6.8), not by its slice
// index: internal/rbt.Tree.insertOrdered
// shifts every later index on a concurrent AddNode, so a cached index would
// silently point Resume at the wrong node once the tree mutates underneath
// it. The caller must hold no tree lock across Pause — DBIterator never
// takes one itself, relying on the read lock its owning DB call already
// released by the time iteration runs interleaved with mutation.
func (it *DBIterator) Pause() {
	it.pinned = it.tree.At(it.pos)
	it.paused = true
}

// Resume re-derives the iterator's position from the node pinned at Pause
// via a fresh SeekIndex, rather than trusting a position cached before the
// pause. If the pinned node was deleted while paused, this lands on its
// would-be insertion point — the next node in canonical order — the same
// outcome any other concurrent-mutation-during-traversal case produces.
// Resume is also applied implicitly by the next Next/Prev/Current call;
// calling it directly only makes pause/resume symmetry explicit at call
// sites.
func (it *DBIterator) Resume() { it.resumeIfPaused() }

func (it *DBIterator) resumeIfPaused() {
	if !it.paused {
		return
	}
	if it.pinned != nil {
		it.pos = it.tree.SeekIndex(it.pinned.Name)
		it.pinned = nil
	}
	it.paused = false
}

// Origin returns the iterator's configured origin.
func (it *DBIterator) Origin() wire.Name { return it.origin }
