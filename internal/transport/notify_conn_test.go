package transport

import (
	"net"
	"net/netip"
	"testing"
)

func TestNotifyConn_SendFrom_LoopbackRoundTrip(t *testing.T) {
	recv, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("no loopback UDP available in sandbox: %v", err)
	}
	defer recv.Close()

	send, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("no loopback UDP available in sandbox: %v", err)
	}
	defer send.Close()

	nc := NewNotifyConn(send, false)
	defer nc.Close()

	dst, err := netip.ParseAddrPort(recv.LocalAddr().String())
	if err != nil {
		t.Fatalf("ParseAddrPort: %v", err)
	}

	payload := []byte("notify")
	// IfIndex 0 leaves interface selection to routing, which is all a
	// sandboxed loopback test can exercise; non-zero IfIndex pinning is
	// exercised against real interfaces in production use.
	if err := nc.SendFrom(0, dst, payload); err != nil {
		t.Fatalf("SendFrom: %v", err)
	}

	buf := make([]byte, 64)
	n, _, err := recv.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if string(buf[:n]) != "notify" {
		t.Errorf("got %q, want %q", buf[:n], "notify")
	}
}
