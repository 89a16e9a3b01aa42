package acl

import (
	"net"
	"testing"
)

func TestNewEnvFromInterfaces_BuildsFromLoopback(t *testing.T) {
	ifaces, err := net.Interfaces()
	if err != nil {
		t.Skipf("net.Interfaces unavailable in this environment: %v", err)
	}
	env, err := NewEnvFromInterfaces(ifaces)
	if err != nil {
		t.Fatalf("NewEnvFromInterfaces: %v", err)
	}
	// Not every sandbox exposes interface addresses; just confirm it doesn't
	// error and returns a usable (possibly empty) StaticEnv.
	_ = env.LocalAddrs
	_ = env.LocalNets
}
