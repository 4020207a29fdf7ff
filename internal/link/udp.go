package link

import (
	"fmt"
	"net"
	"sync"
)

// UDPLink listens on a local port and adopts the sender of the most
// recent inbound datagram as its write target. This is the usual ground
// station arrangement: the vehicle (or its radio) sends first.
type UDPLink struct {
	name string
	conn *net.UDPConn

	mu   sync.RWMutex
	peer *net.UDPAddr
}

// ListenUDP opens a UDP link bound to laddr, e.g. ":14550".
func ListenUDP(name, laddr string) (*UDPLink, error) {
	addr, err := net.ResolveUDPAddr("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", name, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", name, err)
	}
	return &UDPLink{name: name, conn: conn}, nil
}

// Name returns the configured link name.
func (l *UDPLink) Name() string {
	return l.name
}

// Read receives one datagram and records its sender as the peer.
func (l *UDPLink) Read(p []byte) (int, error) {
	n, addr, err := l.conn.ReadFromUDP(p)
	if addr != nil {
		l.mu.Lock()
		l.peer = addr
		l.mu.Unlock()
	}
	return n, err
}

// Write sends one datagram to the learned peer. Before any inbound
// traffic the peer is unknown and ErrNoPeer is returned.
func (l *UDPLink) Write(p []byte) (int, error) {
	l.mu.RLock()
	peer := l.peer
	l.mu.RUnlock()

	if peer == nil {
		return 0, fmt.Errorf("link %s: %w", l.name, ErrNoPeer)
	}
	return l.conn.WriteToUDP(p, peer)
}

// Peer returns the learned remote address, or nil.
func (l *UDPLink) Peer() *net.UDPAddr {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.peer
}

// LocalAddr returns the bound address.
func (l *UDPLink) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}

// Close closes the socket, unblocking any pending Read.
func (l *UDPLink) Close() error {
	return l.conn.Close()
}
