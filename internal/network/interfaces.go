// Package network selects which local interfaces a zone server listens and
// transfers on.
package network

import "net"

// ListenInterfaces returns network interfaces suitable for binding the
// authoritative/transfer listener, excluding VPN interfaces, container
// bridge interfaces, and loopback/down interfaces. This is the same
// noise-filtering ambient pattern the teacher's mDNS responder used to pick
// multicast-capable interfaces, generalized here to unicast listening: a
// zone server's listener doesn't require multicast support, so that flag
// check is dropped, but the VPN/Docker exclusion lists still apply — a
// zone-transfer listener bound to a transient utun/veth interface is just as
// much an operational footgun as an mDNS responder on one.
//
// Callers that want every interface, including ones this function would
// exclude, should enumerate net.Interfaces() directly and apply their own
// filter.
func ListenInterfaces() ([]net.Interface, error) {
	all, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	filtered := make([]net.Interface, 0, len(all))
	for _, iface := range all {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if isVPN(iface.Name) {
			continue
		}
		if isContainerBridge(iface.Name) {
			continue
		}
		filtered = append(filtered, iface)
	}
	return filtered, nil
}

// isVPN reports whether name matches a known VPN tunnel naming convention
// (utun/tun/ppp/wg/tailscale/wireguard): these interfaces come and go with
// the VPN client's lifecycle and are never where a zone server should bind.
func isVPN(name string) bool {
	for _, prefix := range []string{"utun", "tun", "ppp", "wg", "tailscale", "wireguard"} {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// isContainerBridge reports whether name matches a Docker/Podman-style
// bridge or veth naming convention.
func isContainerBridge(name string) bool {
	if name == "docker0" {
		return true
	}
	for _, prefix := range []string{"veth", "br-", "cni"} {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
