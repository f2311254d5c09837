package port

import (
	"fmt"
	"net"
)

// Checker reports whether a host port can be bound. The deploy pipeline
// depends on this interface so tests can simulate busy ports.
type Checker interface {
	IsPortAvailable(port int, protocol string) bool
	FindAvailablePort(startPort, endPort int, protocol string) (int, error)
}

// Scanner checks host port availability by asking the OS to bind the port.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsPortAvailable checks whether port is free on all interfaces.
//
// For TCP it attempts net.Listen, for UDP net.ListenPacket, closing the
// listener immediately on success. The wildcard address is bound, since
// the runtime publishes ports on 0.0.0.0.
//
// Out-of-range ports and unknown protocols are reported as unavailable.
func (s *Scanner) IsPortAvailable(port int, protocol string) bool {
	if port < 1 || port > 65535 {
		return false
	}
	addr := fmt.Sprintf(":%d", port)

	switch protocol {
	case "", "tcp":
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return false
		}
		_ = listener.Close()
		return true

	case "udp":
		conn, err := net.ListenPacket("udp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true

	default:
		return false
	}
}

// FindAvailablePort returns the first free port in [startPort, endPort].
// It is used to suggest an alternative when the configured host port is busy.
func (s *Scanner) FindAvailablePort(startPort, endPort int, protocol string) (int, error) {
	for port := startPort; port <= endPort; port++ {
		if s.IsPortAvailable(port, protocol) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available %s port found in range %d-%d", protocol, startPort, endPort)
}
