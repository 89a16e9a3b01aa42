// Package rbt implements the hybrid radix/red-black name tree the zone
// database is built on (spec §4.5): label-sequence storage with a
// sub-linear sibling index, wildcard marks, and a restartable chain
// supporting DNSSEC canonical-order traversal.
package rbt

import (
	"sort"
	"sync"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// Node is one name in the tree. Deeper names are not modeled with an
// intrusive "down" pointer to a child red-black tree the way BIND9's rbtdb.c
// does it (spec §9's "owned containers" redesign direction): Tree keeps
// every node in one flat, canonically ordered index instead, with ancestry
// resolved by name containment rather than pointer-walking.
type Node struct {
	Name         wire.Name
	Wild         bool
	FindCallback bool
	Data         interface{}
}

// FindStatus is FindNode's outcome (spec §4.5).
type FindStatus int

const (
	Success FindStatus = iota
	PartialMatch
	NotFound
)

// CallbackResult is what a find-callback hands back to short-circuit a
// search (spec §4.5, spec §9's enum redesign avoiding function-pointer
// indirection in favor of a plain result value).
type CallbackResult int

const (
	Continue CallbackResult = iota
	StopPartial
	CallbackError
)

// Options bitset for FindNode (spec §4.5).
type Options uint8

const (
	// EmptyData treats nodes with no data as valid match targets.
	EmptyData Options = 1 << iota
	// NoExact returns the deepest proper ancestor even on an exact hit.
	NoExact
)

// Callback is invoked for every node marked FindCallback encountered on the
// way down to the search target, most-shallow first.
type Callback func(n *Node) CallbackResult

// Tree is the name index for one database (a zone or the cache). It is
// safe for concurrent use: callers take Lock/RLock per spec §4.6.1's tree
// lock discipline (the tree lock itself, not a per-node lock).
type Tree struct {
	mu      sync.RWMutex
	byName  map[string]*Node
	ordered []*Node // kept in strict DNSSEC canonical order (RFC 4034 §6.1)
	index   *siblingIndex
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{byName: map[string]*Node{}, index: newSiblingIndex()}
}

// Lock / Unlock / RLock / RUnlock expose the tree lock directly so callers
// composing it with the node and DB locks (spec §4.6.1) control ordering
// explicitly rather than through a hidden Find/Add API that locks for them.
func (t *Tree) Lock()    { t.mu.Lock() }
func (t *Tree) Unlock()  { t.mu.Unlock() }
func (t *Tree) RLock()   { t.mu.RLock() }
func (t *Tree) RUnlock() { t.mu.RUnlock() }

func key(n wire.Name) string { return n.Lower().String() }

// AddNode creates and returns the node for name, creating it if absent.
// If name is a wildcard ("*.<parent>"), the parent's Wild bit is set.
// Callers must hold the tree lock exclusive (spec §4.6.1).
func (t *Tree) AddNode(name wire.Name) *Node {
	k := key(name)
	if n, ok := t.byName[k]; ok {
		return n
	}
	n := &Node{Name: name}
	t.byName[k] = n
	t.insertOrdered(n)
	t.index.insert(name, n)

	if name.IsWildcard() {
		parent := name.Parent()
		pk := key(parent)
		pn, ok := t.byName[pk]
		if !ok {
			pn = t.AddNode(parent)
		}
		pn.Wild = true
	}
	return n
}

func (t *Tree) insertOrdered(n *Node) {
	i := sort.Search(len(t.ordered), func(i int) bool {
		return wire.Compare(t.ordered[i].Name, n.Name) >= 0
	})
	t.ordered = append(t.ordered, nil)
	copy(t.ordered[i+1:], t.ordered[i:])
	t.ordered[i] = n
}

// FindNode walks the indexed ancestors of name (found by probing each of
// its root-first prefixes in the sibling index) down to name itself, invoking
// callback on every ancestor marked FindCallback, most-shallow first, then
// reports whether name itself was found exactly, partially, or not at all
// (spec §4.5).
func FindNode(t *Tree, name wire.Name, opts Options, callback Callback) (FindStatus, *Node, error) {
	k := key(name)
	exact, hasExact := t.byName[k]

	ancestors := t.index.ancestorChain(name)
	for _, anc := range ancestors {
		if !anc.FindCallback {
			continue
		}
		switch callback(anc) {
		case StopPartial:
			return PartialMatch, anc, nil
		case CallbackError:
			return NotFound, nil, &errortypes.IntegrityError{Operation: "find node", Message: "find callback reported an error"}
		}
	}

	if hasExact && (opts&EmptyData != 0 || exact.Data != nil) && opts&NoExact == 0 {
		return Success, exact, nil
	}
	if hasExact && len(ancestors) > 0 && ancestors[len(ancestors)-1] == exact {
		ancestors = ancestors[:len(ancestors)-1]
	}
	if len(ancestors) > 0 {
		return PartialMatch, ancestors[len(ancestors)-1], nil
	}
	return NotFound, nil, nil
}

// DeleteNode removes name's node. Per spec §4.5, production code paths only
// delete on full database teardown; this is provided for that path, not for
// incremental mutation.
func (t *Tree) DeleteNode(name wire.Name) {
	k := key(name)
	n, ok := t.byName[k]
	if !ok {
		return
	}
	delete(t.byName, k)
	t.index.remove(name)
	i := sort.Search(len(t.ordered), func(i int) bool { return wire.Compare(t.ordered[i].Name, name) >= 0 })
	if i < len(t.ordered) && t.ordered[i] == n {
		t.ordered = append(t.ordered[:i], t.ordered[i+1:]...)
	}
}

// Get returns the node for name, if any, without participating in a find
// walk (no callback invocation).
func (t *Tree) Get(name wire.Name) (*Node, bool) {
	n, ok := t.byName[key(name)]
	return n, ok
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.ordered) }

// SeekIndex returns the position in canonical order where a node named name
// is, or would be inserted if absent (the first index whose name is
// >= name). Used by chain-walking callers (closest-NXT search, the DB
// iterator) that need ordered-set predecessor/successor access beyond exact
// lookup.
func (t *Tree) SeekIndex(name wire.Name) int {
	return sort.Search(len(t.ordered), func(i int) bool {
		return wire.Compare(t.ordered[i].Name, name) >= 0
	})
}

// At returns the node at canonical-order position i, or nil if i is out of
// range.
func (t *Tree) At(i int) *Node {
	if i < 0 || i >= len(t.ordered) {
		return nil
	}
	return t.ordered[i]
}
