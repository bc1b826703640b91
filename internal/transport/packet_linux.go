//go:build linux

// File: internal/transport/packet_linux.go
// Author: momentics <momentics@gmail.com>
//
// packetTransport stands in for a poll-mode NIC driver using an AF_PACKET
// raw socket bound to one interface. It gives RecvBurst/SendBurst the same
// non-blocking, multi-frame shape a real DPDK/AF_XDP ring would; bringing
// up an actual poll-mode driver is out of scope.

package transport

import (
	"encoding/binary"
	"net"

	"golang.org/x/sys/unix"

	"github.com/hioload/zeusq/api"
	"github.com/hioload/zeusq/core/protocol"
	"github.com/hioload/zeusq/pool"
)

// recvScratch recycles the per-burst receive staging buffer; one MTU-plus
// frame is copied out of it per Recvfrom before the next iteration reuses
// the same scratch space.
var recvScratch = pool.NewBytePool(65536)

type packetTransport struct {
	fd      int
	mac     protocol.MAC
	ifIndex int
}

// NewPacketTransport binds a raw AF_PACKET socket to ifaceName, capturing
// (and, on send, injecting) every Ethernet frame that crosses it.
func NewPacketTransport(ifaceName string) (api.PacketTransport, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	sa := &unix.SockaddrLinklayer{Protocol: htons(unix.ETH_P_ALL), Ifindex: iface.Index}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, err
	}
	var mac protocol.MAC
	copy(mac[:], iface.HardwareAddr)
	return &packetTransport{fd: fd, mac: mac, ifIndex: iface.Index}, nil
}

func htons(v uint16) uint16 {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return binary.LittleEndian.Uint16(b)
}

func (p *packetTransport) MAC() [6]byte { return p.mac }

func (p *packetTransport) LinkUp() bool {
	iface, err := net.InterfaceByIndex(p.ifIndex)
	if err != nil {
		return false
	}
	return iface.Flags&net.FlagUp != 0
}

// RecvBurst drains up to max already-queued frames without blocking.
func (p *packetTransport) RecvBurst(max int) ([][]byte, error) {
	frames := make([][]byte, 0, max)
	buf := recvScratch.Acquire(65536)
	defer recvScratch.Release(buf)
	for len(frames) < max {
		n, _, err := unix.Recvfrom(p.fd, buf, unix.MSG_DONTWAIT)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				break
			}
			return frames, err
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		frames = append(frames, frame)
	}
	return frames, nil
}

// SendBurst transmits as many frames as fit before the socket would block,
// returning the count actually sent.
func (p *packetTransport) SendBurst(frames [][]byte) (int, error) {
	sa := &unix.SockaddrLinklayer{Protocol: htons(unix.ETH_P_ALL), Ifindex: p.ifIndex}
	sent := 0
	for _, f := range frames {
		if err := unix.Sendto(p.fd, f, unix.MSG_DONTWAIT, sa); err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				break
			}
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (p *packetTransport) Fd() uintptr { return uintptr(p.fd) }

func (p *packetTransport) Close() error { return unix.Close(p.fd) }
