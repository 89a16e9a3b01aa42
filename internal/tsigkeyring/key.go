// Package tsigkeyring implements the TSIG key ring of spec §4.9: a
// name-indexed, reference-counted set of shared-secret keys, with Sign and
// Verify built against an injected internal/cryptoring.SignVerifier rather
// than a hardcoded MAC implementation (spec §1's "the core consumes a
// sign/verify/keygen interface and a key ring").
package tsigkeyring

import (
	"sync"
	"time"

	"github.com/joshuafuller/zoneguard/internal/wire"
)

// Key is one TSIG key record (spec §4.9): (name, algorithm, secret,
// inception, expire, generated?, creator?, refs, deleted?).
type Key struct {
	Name      wire.Name
	Algorithm string
	Secret    []byte
	Inception time.Time
	Expire    time.Time
	Generated bool   // true for a TKEY-negotiated ephemeral key
	Creator   string // identity that installed this key, for generated keys

	mu      sync.Mutex
	refs    int
	deleted bool
}

// Acquire pins k against concurrent deletion; callers holding a reference
// must call Release when done.
func (k *Key) Acquire() {
	k.mu.Lock()
	k.refs++
	k.mu.Unlock()
}

// Release drops a reference acquired via Acquire.
func (k *Key) Release() {
	k.mu.Lock()
	k.refs--
	k.mu.Unlock()
}

// Deleted reports whether the keyring has marked k for removal; a deleted
// key already in use by a live transaction remains valid for that
// transaction but will not be found by future lookups.
func (k *Key) Deleted() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.deleted
}

// Valid reports whether now falls within k's inception/expire window. A
// zero Expire means the key never expires.
func (k *Key) Valid(now time.Time) bool {
	if now.Before(k.Inception) {
		return false
	}
	return k.Expire.IsZero() || now.Before(k.Expire)
}
