package acl

import (
	"net"
	"net/netip"
)

// NewEnvFromInterfaces builds a StaticEnv by resolving ifaces' addresses
// once, up front — the same avoid-a-syscall-per-check caching the teacher's
// internal/security.SourceFilter used for per-packet source validation,
// applied here to resolving Localhost/Localnets once at ACL construction
// time rather than on every Match call.
func NewEnvFromInterfaces(ifaces []net.Interface) (StaticEnv, error) {
	var env StaticEnv
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			addr, ok := netip.AddrFromSlice(ipnet.IP)
			if !ok {
				continue
			}
			addr = addr.Unmap()
			env.LocalAddrs = append(env.LocalAddrs, addr)

			ones, _ := ipnet.Mask.Size()
			prefix := netip.PrefixFrom(addr, ones)
			env.LocalNets = append(env.LocalNets, prefix.Masked())
		}
	}
	return env, nil
}
