//go:build !linux

// File: internal/transport/stream_stub.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux placeholder: the byte-stream backend's non-blocking socket code
// is Linux-specific (Readv/Writev/RecvmsgBuffers plumbing via
// golang.org/x/sys/unix). Other platforms report unsupported rather than
// fail the build.

package transport

import "github.com/hioload/zeusq/api"

// NewStreamTransport always fails on this platform.
func NewStreamTransport() (api.StreamTransport, error) {
	return nil, api.ErrNotSupported
}
