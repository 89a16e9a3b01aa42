package acl

import "net/netip"

// Request is the (address, signer) pair an ACL check is evaluated against
// (spec §4.7's request_addr, request_signer).
type Request struct {
	Addr   netip.Addr
	Signer string // transaction signer key name, empty if unsigned
}

// Match implements spec §4.7's match(request_addr, request_signer, acl, env):
// walks l's elements in order and returns the signed 1-based index of the
// first one that fires, or 0 on no match. A negated element firing returns
// -(i+1); a positive element firing returns i+1.
func Match(req Request, l *List, env Env) int {
	for i, el := range l.Elements {
		if elementMatches(req, el, env) {
			if el.Negative {
				return -(i + 1)
			}
			return i + 1
		}
	}
	return 0
}

func elementMatches(req Request, el Element, env Env) bool {
	switch el.Kind {
	case KindIPPrefix:
		return el.Prefix.Contains(req.Addr)
	case KindKeyName:
		return req.Signer != "" && req.Signer == el.KeyName
	case KindNested:
		// A nested ACL returning a negative match is treated as no-match by
		// the parent: double negation must never flip a deny into an allow
		// (spec §4.7).
		sub := Match(req, el.Nested, env)
		return sub > 0
	case KindLocalhost:
		return env != nil && env.IsLocalAddr(req.Addr)
	case KindLocalnets:
		return env != nil && env.IsLocalNet(req.Addr)
	case KindAny:
		return true
	case KindRateLimit:
		return el.Limiter != nil && !el.Limiter.Allow(req.Addr.String())
	default:
		return false
	}
}

// Allowed is a convenience wrapper over Match: a list allows a request when
// its first firing element is positive.
func Allowed(req Request, l *List, env Env) bool {
	return Match(req, l, env) > 0
}
