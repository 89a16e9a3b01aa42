package rbt

import (
	"strings"

	"github.com/miekg/radix"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// siblingIndex accelerates ancestor/zonecut discovery by looking up each
// root-first prefix of a name in a radix tree instead of walking through a
// per-level red-black tree (spec §4.5's "hybrid radix/red-black tree"). It is keyed by a name's
// labels written root-first ("com.example.www" for "www.example.com."), so
// that every ancestor of a name is a string prefix of the name's own key —
// exactly the search radix.Radix is built for. Grounded on the reversed-
// label zone index in darkoperator/golang-dns's Zone type.
type siblingIndex struct {
	r *radix.Radix
}

func newSiblingIndex() *siblingIndex {
	return &siblingIndex{r: radix.New()}
}

// rootFirstKey renders name's labels most-significant first, dot-joined,
// lowercased — the reverse of how a name is normally written.
func rootFirstKey(n wire.Name) string {
	count := n.LabelCount()
	labels := make([]string, count)
	for i := 0; i < count; i++ {
		labels[count-1-i] = string(n.Label(i))
	}
	return strings.ToLower(strings.Join(labels, "."))
}

func (s *siblingIndex) insert(n wire.Name, node *Node) {
	s.r.Insert(rootFirstKey(n), node)
}

func (s *siblingIndex) remove(n wire.Name) {
	s.r.Remove(rootFirstKey(n))
}

// ancestorChain returns every indexed ancestor of name (including name
// itself if present), most-shallow first, by probing progressively longer
// root-first prefixes against the radix index.
func (s *siblingIndex) ancestorChain(name wire.Name) []*Node {
	key := rootFirstKey(name)
	parts := strings.Split(key, ".")
	var chain []*Node
	for i := 1; i <= len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		if v, ok := s.r.Find(prefix); ok {
			if node, ok := v.(*Node); ok {
				chain = append(chain, node)
			}
		}
	}
	return chain
}
