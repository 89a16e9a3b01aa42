package tsigkeyring

import (
	"sync"

	"github.com/joshuafuller/zoneguard/internal/wire"
)

// Keyring is a name-indexed map of Keys under a shared/exclusive lock (spec
// §4.9).
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]*Key
}

// New returns an empty keyring.
func New() *Keyring {
	return &Keyring{keys: make(map[string]*Key)}
}

func indexKey(n wire.Name) string { return n.Lower().String() }

// Add installs k, replacing any existing key of the same name.
func (kr *Keyring) Add(k *Key) {
	kr.mu.Lock()
	defer kr.mu.Unlock()
	kr.keys[indexKey(k.Name)] = k
}

// Find returns the key named name, if present and not deleted.
func (kr *Keyring) Find(name wire.Name) (*Key, bool) {
	kr.mu.RLock()
	defer kr.mu.RUnlock()
	k, ok := kr.keys[indexKey(name)]
	if !ok || k.Deleted() {
		return nil, false
	}
	return k, true
}

// Remove marks the named key deleted. A key with no outstanding references
// is dropped from the ring at once. A key still pinned by Acquire stays
// valid for the transaction holding it and is invisible to new Find calls
// immediately, but its entry stays in the ring after the last Release; only
// a later Add under the same name replaces it.
func (kr *Keyring) Remove(name wire.Name) {
	kr.mu.Lock()
	defer kr.mu.Unlock()
	k, ok := kr.keys[indexKey(name)]
	if !ok {
		return
	}
	k.mu.Lock()
	k.deleted = true
	refs := k.refs
	k.mu.Unlock()
	if refs == 0 {
		delete(kr.keys, indexKey(name))
	}
}
