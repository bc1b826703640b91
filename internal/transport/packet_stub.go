//go:build !linux

// File: internal/transport/packet_stub.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux placeholder: AF_PACKET raw sockets are Linux-specific.

package transport

import "github.com/hioload/zeusq/api"

// NewPacketTransport always fails on this platform.
func NewPacketTransport(ifaceName string) (api.PacketTransport, error) {
	return nil, api.ErrNotSupported
}
