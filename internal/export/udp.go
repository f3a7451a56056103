package export

import (
	"fmt"
	"net"
	"time"
)

// maxDatagram is the largest UDP payload over IPv4.
const maxDatagram = 65507

type udpConn interface {
	Write(p []byte) (int, error)
	Close() error
}

type resolveFunc func(network, address string) (*net.UDPAddr, error)
type dialFunc func(network string, laddr, raddr *net.UDPAddr) (udpConn, error)

// UDPSink sends encoded snapshots to one destination, at most once per
// interval of simulation time.
type UDPSink struct {
	dest     string
	interval time.Duration
	conn     udpConn

	sent  bool
	lastS float64
}

func NewUDPSink(dest string, interval time.Duration) (*UDPSink, error) {
	return newUDPSink(dest, interval, net.ResolveUDPAddr, func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return net.DialUDP(network, laddr, raddr)
	})
}

func newUDPSink(dest string, interval time.Duration, resolve resolveFunc, dial dialFunc) (*UDPSink, error) {
	addr, err := resolve("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("resolve dest: %w", err)
	}

	// DialUDP selects a suitable local address automatically.
	conn, err := dial("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial udp: %w", err)
	}
	return &UDPSink{dest: dest, interval: interval, conn: conn}, nil
}

func (u *UDPSink) Dest() string { return u.dest }

// Send encodes and writes s unless the previous send was less than the
// interval ago. A snapshot whose time goes backwards is always sent.
func (u *UDPSink) Send(s *Snapshot) error {
	if u.sent && s.TimeS >= u.lastS && s.TimeS-u.lastS < u.interval.Seconds() {
		return nil
	}
	payload, err := Encode(s)
	if err != nil {
		return err
	}
	if len(payload) > maxDatagram {
		return fmt.Errorf("snapshot of %d bytes exceeds datagram size", len(payload))
	}
	if _, err := u.conn.Write(payload); err != nil {
		return fmt.Errorf("send snapshot: %w", err)
	}
	u.sent, u.lastS = true, s.TimeS
	return nil
}

func (u *UDPSink) Close() error {
	if u.conn == nil {
		return nil
	}
	return u.conn.Close()
}
