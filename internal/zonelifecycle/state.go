// Package zonelifecycle implements the per-zone state machine of spec §4.8:
// unloaded → loaded → {current, expired}, driven by Load/Refresh/TransferIn/
// Notify/XferOut. The listener and wire transfer I/O themselves are out of
// scope (spec §1) — Machine drives the transitions and calls out to injected
// collaborators for the actual network work. It runs no timers of its own:
// the caller decides when to invoke Refresh and CheckExpire, and of the SOA
// timing fields only Expire is consulted (by CheckExpire). It is grounded on the
// teacher's internal/state.Machine: a mutex-guarded currentState field, a
// test hook invoked without the lock held, and context-aware phase calls.
package zonelifecycle

// State is one node of the zone lifecycle state machine (spec §4.8).
type State int

const (
	// StateUnloaded is the starting state: no database has ever loaded.
	StateUnloaded State = iota
	// StateLoaded indicates a load or transfer completed but the zone has not
	// yet been confirmed servable (transiently held during Load/TransferIn).
	StateLoaded
	// StateCurrent indicates the zone has a servable database and is within
	// its SOA expire window.
	StateCurrent
	// StateExpired indicates expire elapsed without a successful refresh; the
	// zone stops answering authoritatively until a transfer succeeds.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "Unloaded"
	case StateLoaded:
		return "Loaded"
	case StateCurrent:
		return "Current"
	case StateExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}
