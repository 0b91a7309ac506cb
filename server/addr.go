package server

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// parseIPv4 resolves a bind address string to its 4-byte form. An empty
// string binds to all interfaces (0.0.0.0), matching net.Listen's
// convention for an empty host.
func parseIPv4(addr string) ([4]byte, error) {
	if addr == "" {
		return [4]byte{}, nil
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return [4]byte{}, fmt.Errorf("invalid IPv4 address %q", addr)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return [4]byte{}, fmt.Errorf("address %q is not IPv4", addr)
	}
	var out [4]byte
	copy(out[:], ip4)
	return out, nil
}

// remoteAddrString formats a sockaddr returned by accept4 for logging.
func remoteAddrString(sa unix.Sockaddr) string {
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		ip := net.IP(in4.Addr[:])
		return fmt.Sprintf("%s:%d", ip.String(), in4.Port)
	}
	return "unknown"
}
