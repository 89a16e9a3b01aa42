package acl

import "net/netip"

// Env supplies the check-time environment Localhost and Localnets resolve
// against (spec §4.7: "resolved at check time against the environment").
// Production callers back this with the host's actual interface addresses;
// tests can supply a fixed set.
type Env interface {
	// IsLocalAddr reports whether addr is bound to this host.
	IsLocalAddr(addr netip.Addr) bool
	// IsLocalNet reports whether addr falls within a subnet configured on
	// this host.
	IsLocalNet(addr netip.Addr) bool
}

// StaticEnv is a fixed-set Env, grounded on the teacher's
// internal/security.SourceFilter's cached-interface-addresses approach
// (avoid a syscall per match by resolving the address set once, up front,
// rather than per check).
type StaticEnv struct {
	LocalAddrs []netip.Addr
	LocalNets  []netip.Prefix
}

func (e StaticEnv) IsLocalAddr(addr netip.Addr) bool {
	for _, a := range e.LocalAddrs {
		if a == addr {
			return true
		}
	}
	return false
}

func (e StaticEnv) IsLocalNet(addr netip.Addr) bool {
	for _, p := range e.LocalNets {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
