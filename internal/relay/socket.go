package relay

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"
)

// DatagramSocket is a non-blocking UDP socket owned by the event loop.
type DatagramSocket struct {
	fd int
}

// ListenUDP binds a non-blocking UDP socket to addr ("host:port", host must
// be an IP literal or empty).
func ListenUDP(addr string) (*DatagramSocket, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSocket, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid port %q", ErrSocket, portStr)
	}
	ip := netip.IPv4Unspecified()
	if host != "" {
		if ip, err = netip.ParseAddr(host); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSocket, err)
		}
	}

	var (
		domain = unix.AF_INET
		sa     unix.Sockaddr
	)
	if ip.Is4() || ip.Is4In6() {
		sa = &unix.SockaddrInet4{Port: int(port), Addr: ip.Unmap().As4()}
	} else {
		domain = unix.AF_INET6
		sa = &unix.SockaddrInet6{Port: int(port), Addr: ip.As16()}
	}

	fd, err := unix.Socket(domain, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: socket: %w", ErrSocket, err)
	}
	unix.CloseOnExec(fd)
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: SO_REUSEADDR: %w", ErrSocket, err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: bind %s: %w", ErrSocket, addr, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: nonblock: %w", ErrSocket, err)
	}
	return &DatagramSocket{fd: fd}, nil
}

// FD returns the descriptor.
func (s *DatagramSocket) FD() int { return s.fd }

// ReadFrom receives one datagram into buf. A datagram longer than buf is
// truncated to len(buf). The peer is rendered as "ip:port".
func (s *DatagramSocket) ReadFrom(buf []byte) (int, string, error) {
	n, from, err := unix.Recvfrom(s.fd, buf, 0)
	if err != nil {
		return 0, "", err
	}
	return n, peerString(from), nil
}

// LocalAddr returns the bound address, useful after binding port 0.
func (s *DatagramSocket) LocalAddr() (netip.AddrPort, error) {
	sa, err := unix.Getsockname(s.fd)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: getsockname: %w", ErrSocket, err)
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port)), nil
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr), uint16(a.Port)), nil
	default:
		return netip.AddrPort{}, fmt.Errorf("%w: unexpected address family", ErrSocket)
	}
}

// Close releases the descriptor.
func (s *DatagramSocket) Close() error {
	return unix.Close(s.fd)
}

func peerString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port)).String()
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr), uint16(a.Port)).String()
	default:
		return "unknown"
	}
}
