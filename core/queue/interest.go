// File: core/queue/interest.go
// Author: momentics <momentics@gmail.com>
//
// interestTracker updates a Reactor's registration for one queue's
// transport fd as push/pop requests are submitted and resolved: read
// interest while listening or any pop is outstanding, write interest
// while any push is outstanding. It is a no-op when no reactor is wired,
// so queue objects work standalone as well as under an event loop.

package queue

import "github.com/hioload/zeusq/api"

type interestTracker struct {
	reactor         api.Reactor
	fd              uintptr
	registered      bool
	listening       bool
	pushOutstanding int
	popOutstanding  int
}

func newInterestTracker(r api.Reactor, fd uintptr) *interestTracker {
	return &interestTracker{reactor: r, fd: fd}
}

func (t *interestTracker) current() api.Interest {
	var in api.Interest
	if t.pushOutstanding > 0 {
		in |= api.InterestWrite
	}
	if t.popOutstanding > 0 || t.listening {
		in |= api.InterestRead
	}
	return in
}

func (t *interestTracker) sync(userData uintptr) {
	if t.reactor == nil {
		return
	}
	want := t.current()
	if !t.registered {
		if want == 0 {
			return
		}
		if err := t.reactor.Register(t.fd, userData, want); err == nil {
			t.registered = true
		}
		return
	}
	_ = t.reactor.Modify(t.fd, want)
}

// prime registers the fd immediately with the given interest OR-ed over
// whatever is already outstanding: a freshly accepted handle is primed for
// read and a connecting one for write, ahead of any submitted request. The
// next submit/resolve transition re-syncs to the tracked set.
func (t *interestTracker) prime(in api.Interest) {
	if t.reactor == nil {
		return
	}
	want := in | t.current()
	if !t.registered {
		if err := t.reactor.Register(t.fd, t.fd, want); err == nil {
			t.registered = true
		}
		return
	}
	_ = t.reactor.Modify(t.fd, want)
}

func (t *interestTracker) onSubmit(k Kind) {
	if k == KindPush {
		t.pushOutstanding++
	} else {
		t.popOutstanding++
	}
	t.sync(t.fd)
}

func (t *interestTracker) onResolved(k Kind) {
	if k == KindPush {
		if t.pushOutstanding > 0 {
			t.pushOutstanding--
		}
	} else {
		if t.popOutstanding > 0 {
			t.popOutstanding--
		}
	}
	t.sync(t.fd)
}

func (t *interestTracker) setListening(v bool) {
	t.listening = v
	t.sync(t.fd)
}

func (t *interestTracker) close() {
	if t.reactor != nil && t.registered {
		_ = t.reactor.Unregister(t.fd)
	}
}
