// Package acl implements the ordered-match-list access control engine (spec
// §4.7): address prefixes, key names, nested lists, and the built-in
// localhost/localnets/any elements, each independently negatable, resolved
// to a signed 1-based match index.
package acl

import (
	"net/netip"
)

// ElementKind tags which variant of Element is populated.
type ElementKind int

const (
	KindIPPrefix ElementKind = iota
	KindKeyName
	KindNested
	KindLocalhost
	KindLocalnets
	KindAny
	KindRateLimit
)

// Element is one entry in an ACL's ordered vector (spec §4.7): a variant tag
// plus a negative flag. Only the field matching Kind is meaningful.
type Element struct {
	Kind     ElementKind
	Negative bool

	Prefix  netip.Prefix // KindIPPrefix
	KeyName string       // KindKeyName
	Nested  *List        // KindNested
	Limiter *RateLimiter // KindRateLimit
}

// IPPrefix returns a positive-match element for addresses within prefix.
func IPPrefix(prefix netip.Prefix) Element { return Element{Kind: KindIPPrefix, Prefix: prefix} }

// KeyName returns a positive-match element for a transaction signer name.
func KeyName(name string) Element { return Element{Kind: KindKeyName, KeyName: name} }

// Nested returns a positive-match element delegating to another List.
func Nested(l *List) Element { return Element{Kind: KindNested, Nested: l} }

// Localhost matches addresses the environment reports as local to this host.
func Localhost() Element { return Element{Kind: KindLocalhost} }

// Localnets matches addresses within any subnet configured on this host.
func Localnets() Element { return Element{Kind: KindLocalnets} }

// Any matches unconditionally; conventionally the last element of a list.
func Any() Element { return Element{Kind: KindAny} }

// RateLimited returns a positive-match element that matches only while limiter
// denies the request (i.e. it is used to express "deny if over rate", see
// List.Match and RateLimiter.Allow).
func RateLimited(limiter *RateLimiter) Element { return Element{Kind: KindRateLimit, Limiter: limiter} }

// Negate returns a copy of e with its Negative flag flipped.
func (e Element) Negate() Element {
	e.Negative = !e.Negative
	return e
}

// List is an ordered ACL (spec §4.7): a named vector of elements, checked
// front to back by Match.
type List struct {
	Name     string
	Elements []Element
}

// New returns an ACL list named name with the given elements in order.
func New(name string, elements ...Element) *List {
	return &List{Name: name, Elements: elements}
}
