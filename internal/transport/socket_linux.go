//go:build linux

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// setSocketOptions configures platform-specific socket options for Linux.
// Sets SO_REUSEADDR and SO_REUSEPORT (kernel >= 3.9) so a zone server can
// bind port 53 from multiple worker processes, or rebind immediately across
// a reload without waiting out TIME_WAIT.
func setSocketOptions(fd uintptr) error {
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}

	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		// Kernels older than 3.9 don't support SO_REUSEPORT; fall back to
		// SO_REUSEADDR alone.
		if err != unix.ENOPROTOOPT {
			return fmt.Errorf("failed to set SO_REUSEPORT: %w", err)
		}
	}

	return nil
}

// KernelVersion returns the Linux kernel release string for diagnostics
// (e.g. explaining why SO_REUSEPORT silently didn't apply).
func KernelVersion() string {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return "unknown"
	}

	release := make([]byte, 0, len(uname.Release))
	for _, b := range uname.Release {
		if b == 0 {
			break
		}
		release = append(release, byte(b))
	}
	return string(release)
}

// platformControl is called by net.ListenConfig during listener setup for
// both the UDP query socket and the TCP zone-transfer socket.
func platformControl(_, _ string, c syscall.RawConn) error {
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
