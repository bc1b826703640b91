//go:build linux
// +build linux

// File: reactor/epoll_reactor.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based implementation of api.Reactor.

package reactor

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/hioload/zeusq/api"
)

// epollReactor keeps userData out of the kernel event struct (the struct's
// Pad field is too narrow to round-trip a 64-bit pointer-sized value) and
// instead tracks it per fd in a side table.
type epollReactor struct {
	epfd int
	mu   sync.Mutex
	data map[int32]uintptr
}

// New constructs the platform-specific api.Reactor for Linux.
func New() (api.Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollReactor{epfd: epfd, data: make(map[int32]uintptr)}, nil
}

func toEpollEvents(interest api.Interest) uint32 {
	var ev uint32
	if interest&api.InterestRead != 0 {
		ev |= unix.EPOLLIN
	}
	if interest&api.InterestWrite != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (r *epollReactor) Register(fd uintptr, userData uintptr, interest api.Interest) error {
	ev := &unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, int(fd), ev); err != nil {
		return err
	}
	r.mu.Lock()
	r.data[int32(fd)] = userData
	r.mu.Unlock()
	return nil
}

func (r *epollReactor) Modify(fd uintptr, interest api.Interest) error {
	ev := &unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(fd)}
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, int(fd), ev)
}

func (r *epollReactor) Unregister(fd uintptr) error {
	r.mu.Lock()
	delete(r.data, int32(fd))
	r.mu.Unlock()
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, int(fd), nil)
}

func (r *epollReactor) userData(fd int32) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data[fd]
}

func (r *epollReactor) Wait(events []api.Event, timeoutMs int) (int, error) {
	raw := make([]unix.EpollEvent, len(events))
	n, err := unix.EpollWait(r.epfd, raw, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		var ready api.Interest
		if raw[i].Events&unix.EPOLLIN != 0 {
			ready |= api.InterestRead
		}
		if raw[i].Events&unix.EPOLLOUT != 0 {
			ready |= api.InterestWrite
		}
		events[i] = api.Event{
			Fd:       uintptr(raw[i].Fd),
			UserData: r.userData(raw[i].Fd),
			Ready:    ready,
			Err:      raw[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0,
		}
	}
	return n, nil
}

func (r *epollReactor) Close() error {
	return unix.Close(r.epfd)
}
