// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// External collaborators consumed by the core: a non-blocking byte-stream
// socket transport (TCP-style) and a poll-mode packet transport (raw
// Ethernet/IPv4/UDP). Neither NIC/driver bring-up nor the userspace TCP
// stack itself is in scope here; these interfaces are the seam the core
// queue layer drives.

package api

// StreamTransport is a non-blocking, byte-stream, socket-shaped transport.
// Implementations must never block; would-block is reported as (0, nil)
// from ReadV/WriteV/PeekV and as (nil, Addr{}, nil) from Accept.
type StreamTransport interface {
	Bind(addr Addr) error
	Listen(backlog int) error
	Connect(addr Addr) error
	// Accept returns a freshly accepted transport and its peer address, or
	// a nil transport when no connection is pending.
	Accept() (StreamTransport, Addr, error)
	// LocalAddr reports the socket's local address (bound or ephemeral).
	LocalAddr() (Addr, error)

	// ReadV scatters into bufs, returning would-block as (0, nil).
	ReadV(bufs [][]byte) (int, error)
	// WriteV gathers from bufs, returning would-block as (0, nil).
	WriteV(bufs [][]byte) (int, error)
	// PeekV reads without consuming, for the token-less Peek operation.
	PeekV(bufs [][]byte) (int, error)

	// Fd exposes the underlying handle for readiness registration.
	Fd() uintptr
	Close() error
}

// PacketTransport drives a poll-mode NIC: burst receive/transmit of raw
// Ethernet frames plus the handful of device facts the packet codec needs
// to fill in source addressing.
type PacketTransport interface {
	// MAC returns the NIC's hardware address.
	MAC() [6]byte
	// LinkUp reports current link state.
	LinkUp() bool

	// RecvBurst returns 0..max already-received frames without blocking.
	RecvBurst(max int) ([][]byte, error)
	// SendBurst accepts 0..len(frames) frames, returning the count actually
	// accepted (a poll-mode NIC's TX ring may be momentarily full).
	SendBurst(frames [][]byte) (int, error)

	// Fd exposes a handle suitable for readiness registration when the
	// transport is backed by a socket-shaped NIC shim (e.g. AF_PACKET).
	Fd() uintptr
	Close() error
}
