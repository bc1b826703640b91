//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Fallback for platforms without an epoll-style notifier. Queues still work
// through direct non-blocking push/pop/wait/poll; only readiness
// notification is unavailable.

package reactor

import (
	"github.com/hioload/zeusq/api"
)

type stubReactor struct{}

// New returns a reactor stub on unsupported platforms: registration is a
// no-op and Wait always reports no readiness, never blocking.
func New() (api.Reactor, error) {
	return &stubReactor{}, nil
}

func (*stubReactor) Register(uintptr, uintptr, api.Interest) error { return nil }
func (*stubReactor) Modify(uintptr, api.Interest) error            { return nil }
func (*stubReactor) Unregister(uintptr) error                      { return nil }
func (*stubReactor) Wait([]api.Event, int) (int, error)            { return 0, nil }
func (*stubReactor) Close() error                                  { return nil }
