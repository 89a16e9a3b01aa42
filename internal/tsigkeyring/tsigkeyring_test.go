package tsigkeyring

import (
	"testing"
	"time"

	"github.com/joshuafuller/zoneguard/internal/cryptoring"
	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/rdata"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

func mustName(t *testing.T, text string) wire.Name {
	t.Helper()
	n, err := wire.NameFromText(text, wire.Root, true)
	if err != nil {
		t.Fatalf("NameFromText(%q): %v", text, err)
	}
	return n
}

func TestKeyring_AddFind(t *testing.T) {
	kr := New()
	name := mustName(t, "xfer-key.")
	kr.Add(&Key{Name: name, Algorithm: "hmac-sha256", Secret: []byte("s3cr3t")})

	if _, ok := kr.Find(name); !ok {
		t.Fatal("Find: key not found after Add")
	}
}

func TestKeyring_RemoveHidesFromFind(t *testing.T) {
	kr := New()
	name := mustName(t, "xfer-key.")
	kr.Add(&Key{Name: name, Algorithm: "hmac-sha256", Secret: []byte("s3cr3t")})
	kr.Remove(name)

	if _, ok := kr.Find(name); ok {
		t.Fatal("Find: removed key still visible")
	}
}

func TestKeyring_RemoveKeepsPinnedKeyAliveForHolder(t *testing.T) {
	kr := New()
	name := mustName(t, "xfer-key.")
	k := &Key{Name: name, Algorithm: "hmac-sha256", Secret: []byte("s3cr3t")}
	kr.Add(k)

	k.Acquire()
	kr.Remove(name)
	if !k.Deleted() {
		t.Fatal("Deleted: want true after Remove")
	}
	// The holder's reference to k is still valid even though it's unfindable.
	if k.Algorithm != "hmac-sha256" {
		t.Fatal("pinned key's fields changed unexpectedly")
	}
	k.Release()
}

func TestSignVerify_RoundTrip(t *testing.T) {
	kr := New()
	name := mustName(t, "xfer-key.")
	kr.Add(&Key{Name: name, Algorithm: "hmac-sha256", Secret: []byte("s3cr3t"), Inception: time.Unix(0, 0)})

	sv := cryptoring.HMAC{}
	now := time.Now()
	message := []byte("rendered dns request bytes")

	tsig, err := Sign(sv, kr, name, message, nil, 1234, now)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(sv, kr, name, message, nil, tsig, now); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerify_FailsOnErrorField(t *testing.T) {
	kr := New()
	name := mustName(t, "xfer-key.")
	kr.Add(&Key{Name: name, Algorithm: "hmac-sha256", Secret: []byte("s3cr3t")})

	tsig, _ := Sign(cryptoring.HMAC{}, kr, name, []byte("msg"), nil, 1, time.Now())
	tsig.Error = 1

	err := Verify(cryptoring.HMAC{}, kr, name, []byte("msg"), nil, tsig, time.Now())
	tsigErr, ok := err.(*errortypes.TSIGError)
	if !ok || tsigErr.Condition != errortypes.TSIGErrorSet {
		t.Fatalf("Verify err = %v, want TSIGErrorSet", err)
	}
}

func TestVerify_FailsOnUnknownKey(t *testing.T) {
	kr := New()
	name := mustName(t, "nope-key.")
	err := Verify(cryptoring.HMAC{}, kr, name, []byte("msg"), nil, &rdata.TSIG{}, time.Now())
	tsigErr, ok := err.(*errortypes.TSIGError)
	if !ok || tsigErr.Condition != errortypes.TSIGUnexpectedTSIG {
		t.Fatalf("Verify err = %v, want TSIGUnexpectedTSIG", err)
	}
}

func TestVerify_FailsOnExpiredTimeWindow(t *testing.T) {
	kr := New()
	name := mustName(t, "xfer-key.")
	kr.Add(&Key{Name: name, Algorithm: "hmac-sha256", Secret: []byte("s3cr3t")})

	signedAt := time.Now().Add(-time.Hour)
	tsig, err := Sign(cryptoring.HMAC{}, kr, name, []byte("msg"), nil, 1, signedAt)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	err = Verify(cryptoring.HMAC{}, kr, name, []byte("msg"), nil, tsig, time.Now())
	tsigErr, ok := err.(*errortypes.TSIGError)
	if !ok || tsigErr.Condition != errortypes.TSIGVerifyFailure {
		t.Fatalf("Verify err = %v, want TSIGVerifyFailure (stale time window)", err)
	}
}

func TestCheckPresence(t *testing.T) {
	if err := CheckPresence(true, false, "k"); err == nil {
		t.Fatal("want EXPECTEDTSIG error")
	}
	if err := CheckPresence(false, true, "k"); err == nil {
		t.Fatal("want UNEXPECTEDTSIG error")
	}
	if err := CheckPresence(true, true, "k"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := CheckPresence(false, false, "k"); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}
