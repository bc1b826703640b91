// File: core/queue/workqueue.go
// Author: momentics <momentics@gmail.com>
//
// workQueue is the per-queue FIFO of tokens awaiting progress, built on
// eapache/queue's ring-buffer Queue. A token may appear at most once; a
// side set enforces that without an O(n) scan on every push.

package queue

import (
	eapachequeue "github.com/eapache/queue"

	"github.com/hioload/zeusq/api"
)

type workQueue struct {
	ring    *eapachequeue.Queue
	present map[api.QueueToken]struct{}
}

func newWorkQueue() *workQueue {
	return &workQueue{
		ring:    eapachequeue.New(),
		present: make(map[api.QueueToken]struct{}),
	}
}

// push appends qt unless it is already queued.
func (w *workQueue) push(qt api.QueueToken) {
	if _, ok := w.present[qt]; ok {
		return
	}
	w.present[qt] = struct{}{}
	w.ring.Add(qt)
}

// popHead removes and returns the token at the head of the FIFO. ok is
// false if the queue is empty.
func (w *workQueue) popHead() (api.QueueToken, bool) {
	if w.ring.Length() == 0 {
		return 0, false
	}
	qt := w.ring.Peek().(api.QueueToken)
	w.ring.Remove()
	delete(w.present, qt)
	return qt, true
}

// requeue appends qt at the tail again; used by the progress step to keep
// round-robining a still-parked request to the back of the line.
func (w *workQueue) requeue(qt api.QueueToken) {
	w.present[qt] = struct{}{}
	w.ring.Add(qt)
}

func (w *workQueue) remove(qt api.QueueToken) {
	delete(w.present, qt)
}

func (w *workQueue) len() int {
	return w.ring.Length()
}
