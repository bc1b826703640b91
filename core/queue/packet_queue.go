// File: core/queue/packet_queue.go
// Author: momentics <momentics@gmail.com>
//
// packetQueue is the Queue Object for the packet backend: a raw NIC
// transport plus the pending-request engine driving the Ethernet/IPv4/UDP
// frame codec in core/protocol, with peer resolution through the
// process-wide MAC<->IPv4 address table.

package queue

import (
	"github.com/hioload/zeusq/api"
	"github.com/hioload/zeusq/core/protocol"
	"github.com/hioload/zeusq/internal/transport"
)

// packetRecvBurst bounds how many frames one pop attempt drains per step.
const packetRecvBurst = 32

type packetQueue struct {
	qd        int
	transport api.PacketTransport
	addrs     *transport.AddressTable
	engine    *engine
	tokens    api.TokenAllocator
	interest  *interestTracker

	bound       api.Addr
	defaultPeer api.Addr

	// recvBacklog holds already-decoded, already-matched packets from a
	// prior burst that a single recvMatching call did not consume; without
	// it, a burst delivering more than one frame this queue cares about
	// would silently lose every frame past the first.
	recvBacklog []*protocol.DecodedPacket
}

// NewPacketQueue opens a fresh packet-backend queue object bound to
// ifaceName's raw socket. addrs is the process-wide MAC<->IPv4 table
// consulted for address resolution; it is shared across all packet queues.
func NewPacketQueue(ifaceName string, addrs *transport.AddressTable, r api.Reactor) (api.Queue, error) {
	t, err := transport.NewPacketTransport(ifaceName)
	if err != nil {
		return nil, err
	}
	q := &packetQueue{
		transport: t,
		addrs:     addrs,
		engine:    newEngine(),
		interest:  newInterestTracker(r, t.Fd()),
	}
	q.engine.onDone = func(pr *PendingRequest) { q.interest.onResolved(pr.Kind) }
	q.qd = registerQueue(q)
	return q, nil
}

func (q *packetQueue) QD() int { return q.qd }

// Bind resolves INADDR_ANY (the zero address) to the NIC's MAC-derived
// IPv4 address from the address table.
func (q *packetQueue) Bind(addr api.Addr) error {
	if !q.bound.IsZero() {
		return api.ErrAlreadyBound
	}
	if addr.IP == [4]byte{} {
		var mac protocol.MAC
		rawMAC := q.transport.MAC()
		copy(mac[:], rawMAC[:])
		if ip, ok := q.addrs.IPFor(mac); ok {
			addr.IP = ip
		}
	}
	q.bound = addr
	return nil
}

// Listen has no meaning for a connectionless packet backend.
func (q *packetQueue) Listen(backlog int) error { return api.ErrNotSupported }

// Connect records a default peer consulted by subsequent pushes whose SGA
// does not carry its own destination address.
func (q *packetQueue) Connect(addr api.Addr) error {
	q.defaultPeer = addr
	return nil
}

// Accept has no meaning for a connectionless packet backend.
func (q *packetQueue) Accept() (api.Queue, api.Addr, error) {
	return nil, api.Addr{}, api.ErrNotSupported
}

// LocalAddr reports the bound address, with INADDR_ANY already resolved to
// the NIC's MAC-derived IPv4 by Bind.
func (q *packetQueue) LocalAddr() (api.Addr, error) {
	return q.bound, nil
}

func (q *packetQueue) Close() error {
	q.engine.closeAll()
	q.interest.close()
	unregisterQueue(q.qd)
	return q.transport.Close()
}

func (q *packetQueue) Push(qt api.QueueToken, sga *api.SGA) (int, error) {
	if len(sga.Segments) == 0 {
		return 0, api.ErrInvalidArgument
	}
	pr := pendingPool.Get()
	pr.Kind, pr.SGA = KindPush, sga
	q.interest.onSubmit(KindPush)
	return q.engine.submit(q, qt, pr)
}

func (q *packetQueue) Pop(qt api.QueueToken, sga *api.SGA) (int, error) {
	pr := pendingPool.Get()
	pr.Kind, pr.SGA = KindPop, sga
	q.interest.onSubmit(KindPop)
	return q.engine.submit(q, qt, pr)
}

// Peek drains one burst looking for an already-available matching frame.
// Unlike the stream backend there is no non-consuming peek at the socket
// layer, so a frame that does not match this queue's bound address is
// dropped exactly as it would be on a real pop, per the receive-side
// validation rules.
func (q *packetQueue) Peek(sga *api.SGA) (int, error) {
	dp, err := q.recvMatching()
	if err != nil {
		return 0, err
	}
	if dp == nil {
		return 0, nil
	}
	sga.Segments = dp.Segments
	sga.Addr = api.Addr{IP: dp.SrcIP, Port: dp.SrcPort}
	return sga.PayloadLen(), nil
}

func (q *packetQueue) Wait(qt api.QueueToken, sga *api.SGA) (int, error) {
	return q.engine.wait(q, qt)
}

func (q *packetQueue) Poll(qt api.QueueToken, sga *api.SGA) (int, error) {
	return q.engine.poll(q, qt)
}

func (q *packetQueue) Drop(qt api.QueueToken) error {
	return q.engine.drop(qt)
}

func (q *packetQueue) attempt(pr *PendingRequest) error {
	if pr.Kind == KindPush {
		return q.attemptPush(pr)
	}
	return q.attemptPop(pr)
}

func (q *packetQueue) attemptPush(pr *PendingRequest) error {
	peer := pr.SGA.Addr
	if peer.IsZero() {
		peer = q.defaultPeer
	}
	var localMAC protocol.MAC
	rawMAC := q.transport.MAC()
	copy(localMAC[:], rawMAC[:])
	dstMAC := q.addrs.MACFor(peer.IP)

	srcIP := q.bound.IP
	if srcIP == [4]byte{} {
		if ip, ok := q.addrs.IPFor(localMAC); ok {
			srcIP = ip
		}
	}

	frame, err := protocol.EncodePacket(localMAC, dstMAC, srcIP, peer.IP, q.bound.Port, peer.Port, pr.SGA)
	if err != nil {
		return err
	}
	n, err := q.transport.SendBurst([][]byte{frame})
	if err != nil {
		return err
	}
	if n == 0 {
		return nil // would-block: NIC ring full, stay parked
	}
	pr.succeed(pr.SGA.PayloadLen())
	return nil
}

func (q *packetQueue) attemptPop(pr *PendingRequest) error {
	dp, err := q.recvMatching()
	if err != nil {
		return err
	}
	if dp == nil {
		return nil
	}
	pr.SGA.Segments = dp.Segments
	pr.SGA.Addr = api.Addr{IP: dp.SrcIP, Port: dp.SrcPort}
	pr.succeed(pr.SGA.PayloadLen())
	return nil
}

// recvMatching returns the next already-matched packet from a prior burst
// before touching the transport again; otherwise it drains one burst,
// silently dropping every frame that fails receive-side validation, and
// banks every match in recvBacklog so later calls (from a second parked
// Pop, or a subsequent Peek) do not lose frames the first call didn't
// consume. Returns (nil, nil) when neither the backlog nor a fresh burst
// holds anything for this queue.
func (q *packetQueue) recvMatching() (*protocol.DecodedPacket, error) {
	if len(q.recvBacklog) > 0 {
		dp := q.recvBacklog[0]
		q.recvBacklog = q.recvBacklog[1:]
		return dp, nil
	}
	frames, err := q.transport.RecvBurst(packetRecvBurst)
	if err != nil {
		return nil, err
	}
	var localMAC protocol.MAC
	rawMAC := q.transport.MAC()
	copy(localMAC[:], rawMAC[:])
	var boundIP *[4]byte
	if q.bound.IP != [4]byte{} {
		ip := q.bound.IP
		boundIP = &ip
	}
	for _, f := range frames {
		dp, err := protocol.DecodePacket(f, localMAC, boundIP, q.bound.Port)
		if err != nil {
			return nil, err
		}
		if dp != nil {
			q.recvBacklog = append(q.recvBacklog, dp)
		}
	}
	if len(q.recvBacklog) == 0 {
		return nil, nil
	}
	dp := q.recvBacklog[0]
	q.recvBacklog = q.recvBacklog[1:]
	return dp, nil
}
