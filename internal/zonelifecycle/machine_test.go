package zonelifecycle

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/joshuafuller/zoneguard/internal/acl"
)

type fakeLoader struct {
	soa SOA
	err error
}

func (f fakeLoader) Load(ctx context.Context, file string) (SOA, error) { return f.soa, f.err }

type fakeRefresher struct {
	serial uint32
	err    error
}

func (f fakeRefresher) QuerySOA(ctx context.Context) (uint32, error) { return f.serial, f.err }

type fakeTransferer struct {
	soa       SOA
	err       error
	xferOutOK bool
}

func (f fakeTransferer) TransferIn(ctx context.Context, kind TransferKind) (SOA, error) {
	return f.soa, f.err
}
func (f fakeTransferer) XferOut(ctx context.Context, kind TransferKind) error {
	if !f.xferOutOK {
		return errors.New("xfer out failed")
	}
	return nil
}

type fakeNotifier struct {
	called  bool
	targets []string
}

func (f *fakeNotifier) Notify(ctx context.Context, targets []string) error {
	f.called = true
	f.targets = targets
	return nil
}

func TestMachine_Load_TransitionsToCurrent(t *testing.T) {
	m := NewMachine(fakeLoader{soa: SOA{Serial: 1, Expire: time.Hour}}, nil, nil, nil)
	var states []State
	m.SetOnStateChange(func(s State) { states = append(states, s) })

	if err := m.Load(context.Background(), "zone.db"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.GetState() != StateCurrent {
		t.Fatalf("GetState = %v, want Current", m.GetState())
	}
	want := []State{StateLoaded, StateCurrent}
	if len(states) != len(want) || states[0] != want[0] || states[1] != want[1] {
		t.Errorf("transitions = %v, want %v", states, want)
	}
}

func TestMachine_Load_FailureLeavesPriorStateUnloaded(t *testing.T) {
	m := NewMachine(fakeLoader{err: errors.New("parse error")}, nil, nil, nil)
	if err := m.Load(context.Background(), "bad.db"); err == nil {
		t.Fatal("Load: want error")
	}
	if m.GetState() != StateUnloaded {
		t.Fatalf("GetState = %v, want Unloaded (failed load must not transition)", m.GetState())
	}
}

func TestMachine_Load_FailureLeavesPriorVersionCurrent(t *testing.T) {
	loader := &sequencedLoader{results: []loadResult{{soa: SOA{Serial: 1, Expire: time.Hour}}}}
	m := NewMachine(loader, nil, nil, nil)
	if err := m.Load(context.Background(), "zone.db"); err != nil {
		t.Fatalf("first Load: %v", err)
	}

	loader.results = append(loader.results, loadResult{err: errors.New("reload parse error")})
	loader.idx = 1
	if err := m.Load(context.Background(), "zone.db"); err == nil {
		t.Fatal("second Load: want error")
	}
	if m.GetState() != StateCurrent {
		t.Fatalf("GetState = %v, want Current (prior version stays current on reload failure)", m.GetState())
	}
}

type loadResult struct {
	soa SOA
	err error
}

type sequencedLoader struct {
	results []loadResult
	idx     int
}

func (s *sequencedLoader) Load(ctx context.Context, file string) (SOA, error) {
	r := s.results[s.idx]
	return r.soa, r.err
}

func TestMachine_Refresh_NoOpWhenSerialUnchanged(t *testing.T) {
	m := NewMachine(fakeLoader{soa: SOA{Serial: 5, Expire: time.Hour}}, nil, fakeRefresher{serial: 5}, nil)
	m.Load(context.Background(), "zone.db")

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if m.GetState() != StateCurrent {
		t.Fatalf("GetState = %v, want Current", m.GetState())
	}
}

func TestMachine_Refresh_TransfersWhenSerialNewer(t *testing.T) {
	xfer := fakeTransferer{soa: SOA{Serial: 6, Expire: time.Hour}}
	m := NewMachine(fakeLoader{soa: SOA{Serial: 5, Expire: time.Hour}}, xfer, fakeRefresher{serial: 6}, nil)
	m.Load(context.Background(), "zone.db")

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if m.SOA().Serial != 6 {
		t.Errorf("SOA.Serial = %d, want 6", m.SOA().Serial)
	}
}

func TestMachine_TransferIn_FailureDoesNotChangeState(t *testing.T) {
	xfer := fakeTransferer{err: errors.New("tsig mismatch")}
	m := NewMachine(fakeLoader{soa: SOA{Serial: 1, Expire: time.Hour}}, xfer, nil, nil)
	m.Load(context.Background(), "zone.db")

	if err := m.TransferIn(context.Background(), AXFR); err == nil {
		t.Fatal("TransferIn: want error")
	}
	if m.GetState() != StateCurrent {
		t.Fatalf("GetState = %v, want Current (failed transfer rolled back, no transition)", m.GetState())
	}
	if m.SOA().Serial != 1 {
		t.Errorf("SOA.Serial = %d, want 1 (unchanged)", m.SOA().Serial)
	}
}

func TestMachine_CheckExpire_TransitionsAfterDeadline(t *testing.T) {
	m := NewMachine(fakeLoader{soa: SOA{Serial: 1, Expire: time.Minute}}, nil, nil, nil)
	m.Load(context.Background(), "zone.db")

	m.CheckExpire(time.Now().Add(2 * time.Minute))
	if m.GetState() != StateExpired {
		t.Fatalf("GetState = %v, want Expired", m.GetState())
	}
	if m.IsAuthoritative() {
		t.Error("IsAuthoritative = true, want false once expired")
	}
}

func TestMachine_CheckExpire_NoOpBeforeDeadline(t *testing.T) {
	m := NewMachine(fakeLoader{soa: SOA{Serial: 1, Expire: time.Hour}}, nil, nil, nil)
	m.Load(context.Background(), "zone.db")

	m.CheckExpire(time.Now().Add(time.Minute))
	if m.GetState() != StateCurrent {
		t.Fatalf("GetState = %v, want Current", m.GetState())
	}
}

func TestMachine_Notify_PushesToAlsoNotifyList(t *testing.T) {
	notifier := &fakeNotifier{}
	m := NewMachine(fakeLoader{soa: SOA{Serial: 1, Expire: time.Hour}}, nil, nil, notifier)
	m.Load(context.Background(), "zone.db")

	if err := m.Notify(context.Background(), []string{"10.0.0.2"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !notifier.called {
		t.Error("Notify: collaborator not invoked")
	}
}

func TestMachine_XferOut_DeniedByACL(t *testing.T) {
	xfer := fakeTransferer{xferOutOK: true}
	m := NewMachine(fakeLoader{soa: SOA{Serial: 1, Expire: time.Hour}}, xfer, nil, nil)
	m.Load(context.Background(), "zone.db")

	list := acl.New("xfer", acl.KeyName("trusted-key"))
	req := acl.Request{Addr: netip.MustParseAddr("10.0.0.1"), Signer: "untrusted-key"}
	if err := m.XferOut(context.Background(), AXFR, req, list, nil); err == nil {
		t.Fatal("XferOut: want denial error for unmatched signer")
	}
}

func TestMachine_XferOut_AllowedByACL(t *testing.T) {
	xfer := fakeTransferer{xferOutOK: true}
	m := NewMachine(fakeLoader{soa: SOA{Serial: 1, Expire: time.Hour}}, xfer, nil, nil)
	m.Load(context.Background(), "zone.db")

	list := acl.New("xfer", acl.KeyName("trusted-key"))
	req := acl.Request{Addr: netip.MustParseAddr("10.0.0.1"), Signer: "trusted-key"}
	if err := m.XferOut(context.Background(), AXFR, req, list, nil); err != nil {
		t.Fatalf("XferOut: %v", err)
	}
}
