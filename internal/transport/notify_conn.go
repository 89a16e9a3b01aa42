package transport

import (
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// NotifyConn wraps a bound net.PacketConn with golang.org/x/net's
// interface-aware control-message API, the same wrapping the teacher's
// socket.go applies to join a multicast group on a chosen set of
// interfaces. Here it serves the opposite, unicast case: a multi-homed zone
// server sending a NOTIFY (RFC 1996) or answering a zone-transfer request
// must pick which local interface the packet egresses from, and golang.org/x/net
// is the only portable way to set a per-packet IfIndex and hop limit without
// dropping to raw sockets.
type NotifyConn struct {
	v4   *ipv4.PacketConn
	v6   *ipv6.PacketConn
	isV6 bool
}

// NewNotifyConn wraps conn for interface-scoped unicast sends. isV6 selects
// which golang.org/x/net control-message family the connection speaks;
// conn must itself be bound with the matching network ("udp4" vs "udp6").
func NewNotifyConn(conn net.PacketConn, isV6 bool) *NotifyConn {
	if isV6 {
		return &NotifyConn{v6: ipv6.NewPacketConn(conn), isV6: true}
	}
	return &NotifyConn{v4: ipv4.NewPacketConn(conn), isV6: false}
}

// SetUnicastHopLimit sets the TTL (IPv4) or hop limit (IPv6) outgoing
// NOTIFY and transfer-ack packets carry. RFC 1996 doesn't mandate a value;
// operators running NOTIFY across a TTL-filtering boundary need this
// settable rather than left at the OS default.
func (nc *NotifyConn) SetUnicastHopLimit(hops int) error {
	if nc.isV6 {
		if err := nc.v6.SetHopLimit(hops); err != nil {
			return fmt.Errorf("set ipv6 hop limit: %w", err)
		}
		return nil
	}
	if err := nc.v4.SetTTL(hops); err != nil {
		return fmt.Errorf("set ipv4 ttl: %w", err)
	}
	return nil
}

// SendFrom writes payload to dst, pinning the egress interface to ifIndex
// via a per-packet control message rather than relying on routing-table
// selection. This is what lets a zone server with several listening
// addresses answer a NOTIFY/transfer peer from the same interface the
// peer's request arrived on.
func (nc *NotifyConn) SendFrom(ifIndex int, dst netip.AddrPort, payload []byte) error {
	addr := net.UDPAddrFromAddrPort(dst)
	if nc.isV6 {
		cm := &ipv6.ControlMessage{IfIndex: ifIndex}
		n, err := nc.v6.WriteTo(payload, cm, addr)
		if err != nil {
			return fmt.Errorf("ipv6 send from interface %d to %s: %w", ifIndex, dst, err)
		}
		if n != len(payload) {
			return fmt.Errorf("ipv6 partial write: %d/%d bytes to %s", n, len(payload), dst)
		}
		return nil
	}
	cm := &ipv4.ControlMessage{IfIndex: ifIndex}
	n, err := nc.v4.WriteTo(payload, cm, addr)
	if err != nil {
		return fmt.Errorf("ipv4 send from interface %d to %s: %w", ifIndex, dst, err)
	}
	if n != len(payload) {
		return fmt.Errorf("ipv4 partial write: %d/%d bytes to %s", n, len(payload), dst)
	}
	return nil
}

// Close closes the wrapped net.PacketConn through the golang.org/x/net
// endpoint; the conn is not usable afterwards.
func (nc *NotifyConn) Close() error {
	if nc.isV6 {
		return nc.v6.Close()
	}
	return nc.v4.Close()
}
