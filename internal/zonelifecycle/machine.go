package zonelifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joshuafuller/zoneguard/internal/acl"
)

// Machine drives one zone's lifecycle (spec §4.8). Zero value is not usable;
// construct with NewMachine.
type Machine struct {
	loader    Loader
	refresher Refresher
	xfer      Transferer
	notifier  Notifier

	mu            sync.RWMutex
	currentState  State
	soa           SOA
	lastRefreshAt time.Time
	onStateChange func(State)
}

// NewMachine returns a machine in StateUnloaded wired to the given
// collaborators. refresher and notifier may be nil for a zone that is never
// a slave or never configures also-notify.
func NewMachine(loader Loader, xfer Transferer, refresher Refresher, notifier Notifier) *Machine {
	return &Machine{
		loader:       loader,
		xfer:         xfer,
		refresher:    refresher,
		notifier:     notifier,
		currentState: StateUnloaded,
	}
}

// SetOnStateChange installs a test/observability hook invoked after every
// transition, without the state lock held (grounded on the teacher's
// Machine.setState: calling out under lock risks a callback that re-enters
// the machine deadlocking).
func (m *Machine) SetOnStateChange(f func(State)) {
	m.mu.Lock()
	m.onStateChange = f
	m.mu.Unlock()
}

// GetState returns the machine's current state.
func (m *Machine) GetState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState
}

// SOA returns the zone's last-known SOA timing fields.
func (m *Machine) SOA() SOA {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.soa
}

func (m *Machine) setState(s State) {
	m.mu.Lock() // nosemgrep
	m.currentState = s
	hook := m.onStateChange
	m.mu.Unlock()
	if hook != nil {
		hook(s)
	}
}

// Load parses file into a new database version and, on success, installs it
// as current (spec §4.8's load transition). A parse failure leaves the
// machine in whatever state it was already in — an unloaded zone stays
// unloaded, a previously current zone keeps serving its prior version.
func (m *Machine) Load(ctx context.Context, file string) error {
	soa, err := m.loader.Load(ctx, file)
	if err != nil {
		return fmt.Errorf("zonelifecycle: load %s: %w", file, err)
	}
	m.mu.Lock()
	m.soa = soa
	m.lastRefreshAt = time.Now()
	m.mu.Unlock()
	m.setState(StateLoaded)
	m.setState(StateCurrent)
	return nil
}

// Refresh implements the slave-side refresh transition: query the master's
// SOA serial and decide no-op, transfer, or (on query failure) retry-later
// while watching the expire deadline (spec §4.8).
func (m *Machine) Refresh(ctx context.Context) error {
	if m.refresher == nil {
		return fmt.Errorf("zonelifecycle: refresh: no refresher configured")
	}
	remoteSerial, err := m.refresher.QuerySOA(ctx)
	if err != nil {
		m.CheckExpire(time.Now())
		return fmt.Errorf("zonelifecycle: refresh: query soa: %w", err)
	}

	m.mu.RLock()
	localSerial := m.soa.Serial
	m.mu.RUnlock()

	if remoteSerial == localSerial {
		m.mu.Lock()
		m.lastRefreshAt = time.Now()
		m.mu.Unlock()
		return nil
	}
	return m.TransferIn(ctx, IXFR)
}

// TransferIn performs an inbound zone transfer and, on success, installs the
// result as current. A failed transfer — including a TSIG mismatch — is
// rolled back by the collaborator and must not move the machine's state
// (spec §4.8's failure semantics).
func (m *Machine) TransferIn(ctx context.Context, kind TransferKind) error {
	soa, err := m.xfer.TransferIn(ctx, kind)
	if err != nil {
		return fmt.Errorf("zonelifecycle: transfer_in: %w", err)
	}
	m.mu.Lock()
	m.soa = soa
	m.lastRefreshAt = time.Now()
	m.mu.Unlock()
	m.setState(StateLoaded)
	m.setState(StateCurrent)
	return nil
}

// Notify pushes the zone's also-notify list after a successful reload (spec
// §4.8's notify transition). Callers invoke this after Load/TransferIn
// succeeds; Notify itself does not gate on state, since a stale-but-current
// zone may still need to notify slaves of an earlier change.
func (m *Machine) Notify(ctx context.Context, targets []string) error {
	if m.notifier == nil {
		return fmt.Errorf("zonelifecycle: notify: no notifier configured")
	}
	if len(targets) == 0 {
		return nil
	}
	return m.notifier.Notify(ctx, targets)
}

// XferOut serves an outbound transfer under the zone's ACL (spec §4.8's
// xfer_out transition, spec §4.7's ACL engine). The request is denied unless
// req matches a positive element of list.
func (m *Machine) XferOut(ctx context.Context, kind TransferKind, req acl.Request, list *acl.List, env acl.Env) error {
	if !acl.Allowed(req, list, env) {
		return fmt.Errorf("zonelifecycle: xfer_out: %s not permitted by transfer ACL", req.Addr)
	}
	return m.xfer.XferOut(ctx, kind)
}

// CheckExpire transitions to StateExpired if now is past the zone's SOA
// expire deadline since the last successful refresh (spec §4.8's expire
// transition). A zone already Unloaded or Expired is left alone.
func (m *Machine) CheckExpire(now time.Time) {
	m.mu.RLock()
	state := m.currentState
	deadline := m.lastRefreshAt.Add(m.soa.Expire)
	m.mu.RUnlock()

	if state != StateCurrent {
		return
	}
	if now.After(deadline) {
		m.setState(StateExpired)
	}
}

// IsAuthoritative reports whether the zone currently answers authoritatively
// (spec §4.8: an expired zone "stops answering authoritatively").
func (m *Machine) IsAuthoritative() bool {
	return m.GetState() == StateCurrent
}
