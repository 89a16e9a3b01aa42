package acl

import (
	"net/netip"
	"testing"
	"time"
)

func mustPrefix(t *testing.T, s string) netip.Prefix {
	t.Helper()
	p, err := netip.ParsePrefix(s)
	if err != nil {
		t.Fatalf("ParsePrefix(%q): %v", s, err)
	}
	return p
}

func mustAddr(t *testing.T, s string) netip.Addr {
	t.Helper()
	a, err := netip.ParseAddr(s)
	if err != nil {
		t.Fatalf("ParseAddr(%q): %v", s, err)
	}
	return a
}

func TestMatch_PositiveIPPrefix(t *testing.T) {
	l := New("trusted", IPPrefix(mustPrefix(t, "10.0.0.0/8")))
	idx := Match(Request{Addr: mustAddr(t, "10.1.2.3")}, l, nil)
	if idx != 1 {
		t.Errorf("Match = %d, want 1", idx)
	}
}

func TestMatch_NoMatchReturnsZero(t *testing.T) {
	l := New("trusted", IPPrefix(mustPrefix(t, "10.0.0.0/8")))
	idx := Match(Request{Addr: mustAddr(t, "192.0.2.1")}, l, nil)
	if idx != 0 {
		t.Errorf("Match = %d, want 0", idx)
	}
}

func TestMatch_NegatedElement(t *testing.T) {
	l := New("deny-bad-net", IPPrefix(mustPrefix(t, "192.0.2.0/24")).Negate(), Any())
	idx := Match(Request{Addr: mustAddr(t, "192.0.2.1")}, l, nil)
	if idx != -1 {
		t.Errorf("Match = %d, want -1", idx)
	}
}

func TestMatch_FirstElementWins(t *testing.T) {
	l := New("ordered", IPPrefix(mustPrefix(t, "10.0.0.0/8")), Any())
	idx := Match(Request{Addr: mustAddr(t, "10.0.0.1")}, l, nil)
	if idx != 1 {
		t.Errorf("Match = %d, want 1 (first element, not Any at position 2)", idx)
	}
}

func TestMatch_KeyName(t *testing.T) {
	l := New("signed-only", KeyName("xfer-key"))
	idx := Match(Request{Addr: mustAddr(t, "10.0.0.1"), Signer: "xfer-key"}, l, nil)
	if idx != 1 {
		t.Errorf("Match = %d, want 1", idx)
	}
	idx = Match(Request{Addr: mustAddr(t, "10.0.0.1"), Signer: "other-key"}, l, nil)
	if idx != 0 {
		t.Errorf("Match with wrong signer = %d, want 0", idx)
	}
}

func TestMatch_NestedACLDoubleNegationGuard(t *testing.T) {
	inner := New("inner", IPPrefix(mustPrefix(t, "10.0.0.0/8")).Negate())
	outer := New("outer", Nested(inner), Any())

	// inner returns -1 (negated match) for 10.0.0.1; the outer list must NOT
	// treat that as a positive nested match (which would let addresses
	// explicitly denied by inner sneak through as allowed via the outer
	// Nested element). It falls through to Any instead.
	idx := Match(Request{Addr: mustAddr(t, "10.0.0.1")}, outer, nil)
	if idx != 2 {
		t.Errorf("Match = %d, want 2 (fell through to Any, nested negative treated as no-match)", idx)
	}
}

func TestMatch_NestedACLPositiveMatch(t *testing.T) {
	inner := New("inner", IPPrefix(mustPrefix(t, "10.0.0.0/8")))
	outer := New("outer", Nested(inner))
	idx := Match(Request{Addr: mustAddr(t, "10.0.0.1")}, outer, nil)
	if idx != 1 {
		t.Errorf("Match = %d, want 1", idx)
	}
}

func TestMatch_Localhost(t *testing.T) {
	addr := mustAddr(t, "127.0.0.1")
	env := StaticEnv{LocalAddrs: []netip.Addr{addr}}
	l := New("local", Localhost())
	idx := Match(Request{Addr: addr}, l, env)
	if idx != 1 {
		t.Errorf("Match = %d, want 1", idx)
	}
}

func TestMatch_Localnets(t *testing.T) {
	env := StaticEnv{LocalNets: []netip.Prefix{mustPrefix(t, "192.168.1.0/24")}}
	l := New("localnets", Localnets())
	idx := Match(Request{Addr: mustAddr(t, "192.168.1.50")}, l, env)
	if idx != 1 {
		t.Errorf("Match = %d, want 1", idx)
	}
}

func TestRateLimiter_AllowsUnderThreshold(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute, 100)
	for i := 0; i < 5; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d denied under threshold", i)
		}
	}
}

func TestRateLimiter_DeniesOverThresholdThenCoolsDown(t *testing.T) {
	rl := NewRateLimiter(2, 10*time.Millisecond, 100)
	rl.Allow("1.2.3.4")
	rl.Allow("1.2.3.4")
	if rl.Allow("1.2.3.4") {
		t.Fatal("third request within window should be denied")
	}
	time.Sleep(15 * time.Millisecond)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("request after cooldown should be allowed")
	}
}

func TestRateLimiter_EvictsOldestWhenOverMaxEntries(t *testing.T) {
	rl := NewRateLimiter(100, time.Minute, 10)
	for i := 0; i < 12; i++ {
		rl.Allow(string(rune('a' + i)))
	}
	rl.mu.RLock()
	n := len(rl.entries)
	rl.mu.RUnlock()
	if n > 11 {
		t.Errorf("entries = %d, want eviction to have kept it near maxEntries", n)
	}
}

func TestMatch_RateLimitElementDeniesAsNoMatchSemantics(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, 100)
	l := New("rate-gated", RateLimited(rl), Any())

	req := Request{Addr: mustAddr(t, "10.0.0.1")}
	// First request: Allow succeeds, so RateLimited does NOT fire (it fires
	// only when Allow denies), falls through to Any.
	idx := Match(req, l, nil)
	if idx != 2 {
		t.Errorf("Match = %d, want 2 (first request allowed, fell through to Any)", idx)
	}
	// Second request within the same window: Allow denies, so RateLimited
	// fires as a positive match at position 1.
	idx = Match(req, l, nil)
	if idx != 1 {
		t.Errorf("Match = %d, want 1 (rate exceeded)", idx)
	}
}
