//go:build linux

// File: internal/transport/stream_linux.go
// Author: momentics <momentics@gmail.com>
//
// Non-blocking TCP byte-stream transport backed by golang.org/x/sys/unix.
// Scatter reads and writes go through Readv/Writev; a non-consuming Peek
// goes through RecvmsgBuffers with MSG_PEEK, since plain Readv has no
// peek mode.

package transport

import (
	"golang.org/x/sys/unix"

	"github.com/hioload/zeusq/api"
)

type streamTransport struct {
	fd int
}

// NewStreamTransport opens a fresh non-blocking TCP socket.
func NewStreamTransport() (api.StreamTransport, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	return wrapFd(fd), nil
}

// wrapFd adopts an already-open socket (e.g. from Accept), applying the
// same non-blocking and TCP_NODELAY treatment as freshly created sockets.
func wrapFd(fd int) api.StreamTransport {
	_ = unix.SetNonblock(fd, true)
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return &streamTransport{fd: fd}
}

func toSockaddrInet4(addr api.Addr) *unix.SockaddrInet4 {
	sa := &unix.SockaddrInet4{Port: int(addr.Port)}
	sa.Addr = addr.IP
	return sa
}

func fromSockaddr(sa unix.Sockaddr) api.Addr {
	if sa4, ok := sa.(*unix.SockaddrInet4); ok {
		return api.Addr{IP: sa4.Addr, Port: uint16(sa4.Port)}
	}
	return api.Addr{}
}

func (t *streamTransport) Bind(addr api.Addr) error {
	_ = unix.SetsockoptInt(t.fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	return unix.Bind(t.fd, toSockaddrInet4(addr))
}

func (t *streamTransport) Listen(backlog int) error {
	return unix.Listen(t.fd, backlog)
}

func (t *streamTransport) Connect(addr api.Addr) error {
	err := unix.Connect(t.fd, toSockaddrInet4(addr))
	if err == unix.EINPROGRESS || err == unix.EALREADY {
		return nil
	}
	return err
}

// Accept returns a nil transport with a nil error when there is no pending
// connection, matching the queue engine's would-block convention.
func (t *streamTransport) Accept() (api.StreamTransport, api.Addr, error) {
	nfd, sa, err := unix.Accept(t.fd)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, api.Addr{}, nil
		}
		return nil, api.Addr{}, err
	}
	return wrapFd(nfd), fromSockaddr(sa), nil
}

func (t *streamTransport) ReadV(bufs [][]byte) (int, error) {
	n, err := unix.Readv(t.fd, bufs)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (t *streamTransport) WriteV(bufs [][]byte) (int, error) {
	n, err := unix.Writev(t.fd, bufs)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (t *streamTransport) PeekV(bufs [][]byte) (int, error) {
	n, _, _, _, err := unix.RecvmsgBuffers(t.fd, bufs, nil, unix.MSG_PEEK|unix.MSG_DONTWAIT)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (t *streamTransport) LocalAddr() (api.Addr, error) {
	sa, err := unix.Getsockname(t.fd)
	if err != nil {
		return api.Addr{}, err
	}
	return fromSockaddr(sa), nil
}

func (t *streamTransport) Fd() uintptr { return uintptr(t.fd) }

func (t *streamTransport) Close() error {
	return unix.Close(t.fd)
}
