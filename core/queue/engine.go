// File: core/queue/engine.go
// Author: momentics <momentics@gmail.com>
//
// engine is the pending-request engine shared by both queue object
// implementations: it owns the pending map and work queue and drives the
// progress-step loop described for push/pop/wait/poll/drop.

package queue

import "github.com/hioload/zeusq/api"

// stepper attempts one bounded unit of progress against a pending
// request, mutating its Done/Result/Err fields. Implemented separately by
// the stream and packet queue objects, since the codec and transport
// differ.
type stepper interface {
	attempt(pr *PendingRequest) error
}

// engine holds one queue's pending map and FIFO work queue.
type engine struct {
	pending map[api.QueueToken]*PendingRequest
	wq      *workQueue
	// onDone, if set, fires exactly once per request at the moment it
	// transitions to done or is dropped before finishing, letting the owning
	// queue retire its readiness interest for that direction.
	onDone func(*PendingRequest)
}

func newEngine() *engine {
	return &engine{pending: make(map[api.QueueToken]*PendingRequest), wq: newWorkQueue()}
}

// submit makes the first attempt at pr. If it finishes synchronously the
// result is returned directly and pr is never parked; otherwise pr is
// inserted into the pending map (a double-insert under the same token is
// a programming error) and qt is appended to the work queue.
func (e *engine) submit(s stepper, qt api.QueueToken, pr *PendingRequest) (int, error) {
	if _, exists := e.pending[qt]; exists {
		return 0, api.ErrInvalidArgument
	}
	if err := s.attempt(pr); err != nil {
		pr.fail(err)
	}
	if pr.Done {
		if e.onDone != nil {
			e.onDone(pr)
		}
		if pr.Err != nil {
			return 0, pr.Err
		}
		return pr.Result, nil
	}
	e.pending[qt] = pr
	e.wq.push(qt)
	return 0, nil
}

// step performs one progress step: the work queue's head token is
// attempted once. A head token whose pending request was already
// cancelled (dropped from the map) is discarded without being attempted.
func (e *engine) step(s stepper) {
	qt, ok := e.wq.popHead()
	if !ok {
		return
	}
	pr, ok := e.pending[qt]
	if !ok {
		return
	}
	if pr.Done {
		// Failed by closeAll but not yet claimed; nothing left to attempt.
		return
	}
	if err := s.attempt(pr); err != nil {
		pr.fail(err)
	}
	if pr.Done {
		if e.onDone != nil {
			e.onDone(pr)
		}
		return
	}
	e.wq.requeue(qt)
}

// wait busy-loops progress steps, each attempting whichever token is
// currently at the head of the work queue, until qt's own request is
// done, then claims and removes it from the pending map.
func (e *engine) wait(s stepper, qt api.QueueToken) (int, error) {
	pr, ok := e.pending[qt]
	if !ok {
		return 0, api.ErrUnknownToken
	}
	for !pr.Done {
		e.step(s)
	}
	delete(e.pending, qt)
	result, err := pr.Result, pr.Err
	e.retire(pr)
	if err != nil {
		return 0, err
	}
	return result, nil
}

// poll performs exactly one progress step (on whichever token is at the
// work queue's head, not necessarily qt) and then reports qt's status
// without blocking. Calling poll repeatedly on a not-yet-done token
// performs the same step-then-check and never mutates qt's own record
// beyond what that shared step touches.
func (e *engine) poll(s stepper, qt api.QueueToken) (int, error) {
	pr, ok := e.pending[qt]
	if !ok {
		return 0, api.ErrUnknownToken
	}
	if !pr.Done {
		e.step(s)
	}
	if !pr.Done {
		return 0, nil
	}
	delete(e.pending, qt)
	result, err := pr.Result, pr.Err
	e.retire(pr)
	if err != nil {
		return 0, err
	}
	return result, nil
}

// drop cancels qt's pending request without claiming a result.
func (e *engine) drop(qt api.QueueToken) error {
	pr, ok := e.pending[qt]
	if !ok {
		return api.ErrUnknownToken
	}
	delete(e.pending, qt)
	e.wq.remove(qt)
	if !pr.Done && e.onDone != nil {
		e.onDone(pr)
	}
	e.retire(pr)
	return nil
}

// closeAll fails every outstanding pending request with ErrQueueClosed.
// Entries stay in the pending map so the next wait/poll/drop naming their
// token still observes the failure and reclaims the record normally.
func (e *engine) closeAll() {
	for qt, pr := range e.pending {
		if !pr.Done {
			pr.fail(api.ErrQueueClosed)
			if e.onDone != nil {
				e.onDone(pr)
			}
		}
		e.wq.remove(qt)
	}
}

// retire returns pr to pendingPool once its token is no longer tracked by
// either the pending map or the work queue.
func (e *engine) retire(pr *PendingRequest) {
	pr.reset()
	pendingPool.Put(pr)
}
