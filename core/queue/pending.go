// File: core/queue/pending.go
// Author: momentics <momentics@gmail.com>
//
// PendingRequest is the record kept for one in-flight push or pop: its
// scatter-gather array, its progress against the stream-backend framing
// (byte_cursor/payload_buffer via protocol.StreamDecoder), and its result.

package queue

import (
	"github.com/hioload/zeusq/api"
	"github.com/hioload/zeusq/core/protocol"
	"github.com/hioload/zeusq/pool"
)

// Kind distinguishes a push request from a pop request.
type Kind int

const (
	KindPush Kind = iota
	KindPop
)

// pendingPool recycles PendingRequest records across submissions instead of
// allocating one per push/pop; engine.retire returns a claimed or dropped
// request here once its token is no longer tracked.
var pendingPool = pool.NewSyncPool(func() *PendingRequest { return &PendingRequest{} })

// reset clears a PendingRequest for reuse from pendingPool. It deliberately
// drops the decoder's payload buffer and the encoder's I/O vector so a
// stale frame from a previous operation can never leak into the next one.
func (p *PendingRequest) reset() {
	*p = PendingRequest{}
}

// PendingRequest tracks one in-flight operation until it is done.
//
// Invariant: Done transitions false->true exactly once; a caller of
// Wait/Poll/Drop removes the request from the owning queue's pending map
// no later than the call that observes Done == true.
type PendingRequest struct {
	Kind Kind
	SGA  *api.SGA

	// Stream-backend progressive decode/encode state.
	decoder *protocol.StreamDecoder
	encIOV  [][]byte
	encOff  int // bytes of encIOV already written, flattened across chunks

	Done   bool
	Result int
	Err    error
}

// newPushPending prepares a push request's encoded I/O vector up front;
// WriteV is handed successive suffixes of it until fully drained.
func newPushPending(sga *api.SGA) (*PendingRequest, error) {
	iov, err := protocol.EncodeStream(sga)
	if err != nil {
		return nil, err
	}
	pr := pendingPool.Get()
	pr.Kind, pr.SGA, pr.encIOV = KindPush, sga, iov
	return pr, nil
}

// newPopPending starts a fresh progressive stream decode.
func newPopPending(sga *api.SGA) *PendingRequest {
	pr := pendingPool.Get()
	pr.Kind, pr.SGA, pr.decoder = KindPop, sga, &protocol.StreamDecoder{}
	return pr
}

// remaining returns the still-unwritten suffixes of the encoded frame, as
// the [][]byte WriteV expects; it never reslices already-written chunks.
func (p *PendingRequest) remaining() [][]byte {
	off := p.encOff
	var out [][]byte
	for _, chunk := range p.encIOV {
		if off >= len(chunk) {
			off -= len(chunk)
			continue
		}
		if off > 0 {
			out = append(out, chunk[off:])
			off = 0
			continue
		}
		out = append(out, chunk)
	}
	return out
}

func (p *PendingRequest) totalEncodedLen() int {
	n := 0
	for _, c := range p.encIOV {
		n += len(c)
	}
	return n
}

func (p *PendingRequest) advance(n int) {
	p.encOff += n
}

func (p *PendingRequest) pushDone() bool {
	return p.encOff >= p.totalEncodedLen()
}

func (p *PendingRequest) fail(err error) {
	p.Done = true
	p.Result = -1
	p.Err = err
}

func (p *PendingRequest) succeed(n int) {
	p.Done = true
	p.Result = n
}
