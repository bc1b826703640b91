// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package transport holds the concrete, build-tagged transport backends
// that satisfy api.StreamTransport and api.PacketTransport: non-blocking
// TCP sockets for the byte-stream backend, and an AF_PACKET raw socket
// standing in for a poll-mode NIC for the packet backend. Non-Linux builds
// get stub implementations that report unsupported rather than fail to
// build.

package transport
