// File: core/queue/stream_queue.go
// Author: momentics <momentics@gmail.com>
//
// streamQueue is the Queue Object for the byte-stream backend: a
// non-blocking TCP-style transport plus the pending-request engine driving
// the magic-tagged frame codec in core/protocol.

package queue

import (
	"github.com/hioload/zeusq/api"
	"github.com/hioload/zeusq/core/protocol"
	"github.com/hioload/zeusq/internal/transport"
	"github.com/hioload/zeusq/pool"
)

type streamQueue struct {
	qd        int
	transport api.StreamTransport
	engine    *engine
	tokens    api.TokenAllocator
	interest  *interestTracker
	listening bool
	bound     api.Addr
}

// NewStreamQueue opens a fresh byte-stream queue object ("socket") and
// registers it in the process-wide QD table. r may be nil, in which case
// the queue runs without reactor-driven wakeups (pure pull model).
func NewStreamQueue(r api.Reactor) (api.Queue, error) {
	t, err := transport.NewStreamTransport()
	if err != nil {
		return nil, err
	}
	q := &streamQueue{
		transport: t,
		engine:    newEngine(),
		interest:  newInterestTracker(r, t.Fd()),
	}
	q.engine.onDone = func(pr *PendingRequest) { q.interest.onResolved(pr.Kind) }
	q.qd = registerQueue(q)
	return q, nil
}

func (q *streamQueue) QD() int { return q.qd }

func (q *streamQueue) Bind(addr api.Addr) error {
	if !q.bound.IsZero() {
		return api.ErrAlreadyBound
	}
	if err := q.transport.Bind(addr); err != nil {
		return err
	}
	q.bound = addr
	return nil
}

func (q *streamQueue) Listen(backlog int) error {
	if err := q.transport.Listen(backlog); err != nil {
		return err
	}
	q.listening = true
	q.interest.setListening(true)
	return nil
}

func (q *streamQueue) Connect(addr api.Addr) error {
	if err := q.transport.Connect(addr); err != nil {
		return err
	}
	q.interest.prime(api.InterestWrite)
	return nil
}

// LocalAddr reports the queue's local address: the bound one if Bind ran,
// otherwise whatever the transport assigned (e.g. an ephemeral port picked
// at connect time).
func (q *streamQueue) LocalAddr() (api.Addr, error) {
	if !q.bound.IsZero() {
		return q.bound, nil
	}
	return q.transport.LocalAddr()
}

// Accept progresses the accept pipeline. A nil, zero-value, nil return
// means "not yet"; accept never blocks.
func (q *streamQueue) Accept() (api.Queue, api.Addr, error) {
	if !q.listening {
		return nil, api.Addr{}, api.ErrInvalidArgument
	}
	nt, peer, err := q.transport.Accept()
	if err != nil {
		return nil, api.Addr{}, err
	}
	if nt == nil {
		return nil, api.Addr{}, nil
	}
	nq := &streamQueue{
		transport: nt,
		engine:    newEngine(),
		interest:  newInterestTracker(q.interest.reactor, nt.Fd()),
	}
	nq.engine.onDone = func(pr *PendingRequest) { nq.interest.onResolved(pr.Kind) }
	nq.qd = registerQueue(nq)
	nq.interest.prime(api.InterestRead)
	return nq, peer, nil
}

func (q *streamQueue) Close() error {
	q.engine.closeAll()
	q.interest.close()
	unregisterQueue(q.qd)
	return q.transport.Close()
}

func (q *streamQueue) Push(qt api.QueueToken, sga *api.SGA) (int, error) {
	pr, err := newPushPending(sga)
	if err != nil {
		return 0, err
	}
	q.interest.onSubmit(KindPush)
	return q.engine.submit(q, qt, pr)
}

func (q *streamQueue) Pop(qt api.QueueToken, sga *api.SGA) (int, error) {
	pr := newPopPending(sga)
	q.interest.onSubmit(KindPop)
	return q.engine.submit(q, qt, pr)
}

// Peek is a token-less, never-parking best-effort pop. MSG_PEEK always
// re-delivers from the front of the receive buffer, so Peek first checks
// that an entire frame is buffered without consuming anything; only then
// does it read the frame off the stream. An incomplete frame leaves the
// stream untouched for a later Pop.
func (q *streamQueue) Peek(sga *api.SGA) (int, error) {
	var hdr [protocol.StreamHeaderLen]byte
	n, err := q.transport.PeekV([][]byte{hdr[:]})
	if err != nil {
		return 0, err
	}
	if n < len(hdr) {
		return 0, nil
	}
	payloadLen, segCount, err := protocol.ParseStreamHeader(hdr[:])
	if err != nil {
		return 0, err
	}
	if payloadLen > protocol.MaxFramePayload {
		return 0, api.ErrProtocol
	}
	payload := pool.DefaultPool().Get(int(payloadLen), -1).Bytes()
	n, err = q.transport.PeekV([][]byte{hdr[:], payload})
	if err != nil {
		return 0, err
	}
	want := protocol.StreamHeaderLen + int(payloadLen)
	if n < want {
		return 0, nil
	}

	// The whole frame is buffered; consume it off the stream.
	consumed := 0
	for consumed < want {
		var bufs [][]byte
		if consumed < protocol.StreamHeaderLen {
			bufs = [][]byte{hdr[consumed:], payload}
		} else {
			bufs = [][]byte{payload[consumed-protocol.StreamHeaderLen:]}
		}
		n, err := q.transport.ReadV(bufs)
		if err != nil {
			return 0, err
		}
		consumed += n
	}

	segs, err := protocol.SliceSegments(payload, segCount)
	if err != nil {
		return 0, err
	}
	sga.Segments = segs
	return sga.PayloadLen(), nil
}

// Wait and Poll fill sga in place via attemptPop (pr.SGA IS the caller's
// sga), so there is nothing left to copy once the engine reports done.
func (q *streamQueue) Wait(qt api.QueueToken, sga *api.SGA) (int, error) {
	return q.engine.wait(q, qt)
}

func (q *streamQueue) Poll(qt api.QueueToken, sga *api.SGA) (int, error) {
	return q.engine.poll(q, qt)
}

func (q *streamQueue) Drop(qt api.QueueToken) error {
	return q.engine.drop(qt)
}

// attempt implements stepper: one bounded unit of progress on pr against
// this queue's transport.
func (q *streamQueue) attempt(pr *PendingRequest) error {
	if pr.Kind == KindPush {
		return q.attemptPush(pr)
	}
	return q.attemptPop(pr)
}

func (q *streamQueue) attemptPush(pr *PendingRequest) error {
	bufs := pr.remaining()
	if len(bufs) == 0 {
		pr.succeed(pr.SGA.PayloadLen())
		return nil
	}
	n, err := q.transport.WriteV(bufs)
	if err != nil {
		return err
	}
	pr.advance(n)
	if pr.pushDone() {
		pr.succeed(pr.SGA.PayloadLen())
	}
	return nil
}

func (q *streamQueue) attemptPop(pr *PendingRequest) error {
	d := pr.decoder
	for !d.Done() {
		if d.HeaderBuffered() && !d.HeaderParsed() {
			if err := d.ParseHeader(); err != nil {
				return err
			}
		}
		chunk := d.NextChunk()
		if chunk == nil {
			break
		}
		n, err := q.transport.ReadV([][]byte{chunk})
		if err != nil {
			return err
		}
		if n == 0 {
			return nil // would-block: stop this step, stay parked
		}
		d.Advance(n)
	}
	if !d.Done() {
		return nil
	}
	segs, err := d.Segments()
	if err != nil {
		return err
	}
	pr.SGA.Segments = segs
	pr.succeed(pr.SGA.PayloadLen())
	return nil
}
