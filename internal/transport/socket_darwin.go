//go:build darwin

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// setSocketOptions configures platform-specific socket options for macOS.
// Sets SO_REUSEADDR and SO_REUSEPORT (native BSD support, no version check
// needed) so a zone server can bind port 53 from multiple worker processes
// or rebind immediately across a reload.
func setSocketOptions(fd uintptr) error {
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		return fmt.Errorf("failed to set SO_REUSEPORT: %w", err)
	}
	return nil
}

// KernelVersion returns empty on macOS; Darwin kernel versioning doesn't map
// to SO_REUSEPORT support the way Linux's does, and all macOS releases
// support it unconditionally.
func KernelVersion() string { return "" }

// platformControl is called by net.ListenConfig during listener setup for
// both the UDP query socket and the TCP zone-transfer socket.
func platformControl(network, address string, c syscall.RawConn) error {
	var sockoptErr error
	err := c.Control(func(fd uintptr) {
		sockoptErr = setSocketOptions(fd)
	})
	if err != nil {
		return fmt.Errorf("raw conn control failed: %w", err)
	}
	return sockoptErr
}

// PlatformControl returns the platform-specific control function for
// net.ListenConfig.Control.
func PlatformControl(network, address string, c syscall.RawConn) error {
	return platformControl(network, address, c)
}
