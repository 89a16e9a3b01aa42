//go:build windows

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// setSocketOptions configures platform-specific socket options for Windows.
// Only SO_REUSEADDR is available; unlike POSIX (where it merely permits
// rebinding a TIME_WAIT socket), Windows' SO_REUSEADDR also lets multiple
// processes bind the same port, so it alone gives us the multi-process
// listener behavior SO_REUSEPORT provides on Linux/macOS. Windows defines no
// SO_REUSEPORT constant at all.
func setSocketOptions(fd uintptr) error {
	if err := windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}
	return nil
}

// KernelVersion returns empty on Windows, which has no analogous concept.
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
