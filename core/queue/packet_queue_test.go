package queue

import (
	"testing"

	"github.com/hioload/zeusq/api"
	"github.com/hioload/zeusq/core/protocol"
	"github.com/hioload/zeusq/internal/transport"
)

// fakePacketTransport is an in-memory api.PacketTransport: frames enqueued
// via inject() are what RecvBurst drains; SendBurst appends to sent for
// inspection.
type fakePacketTransport struct {
	mac     protocol.MAC
	pending [][]byte
	sent    [][]byte
}

func (f *fakePacketTransport) MAC() [6]byte { return f.mac }
func (f *fakePacketTransport) LinkUp() bool { return true }
func (f *fakePacketTransport) Fd() uintptr  { return 1 }
func (f *fakePacketTransport) Close() error { return nil }

func (f *fakePacketTransport) inject(frame []byte) { f.pending = append(f.pending, frame) }

func (f *fakePacketTransport) RecvBurst(max int) ([][]byte, error) {
	if len(f.pending) > max {
		out := f.pending[:max]
		f.pending = f.pending[max:]
		return out, nil
	}
	out := f.pending
	f.pending = nil
	return out, nil
}

func (f *fakePacketTransport) SendBurst(frames [][]byte) (int, error) {
	f.sent = append(f.sent, frames...)
	return len(frames), nil
}

func newFakePacketQueue(mac protocol.MAC) (*packetQueue, *fakePacketTransport) {
	ft := &fakePacketTransport{mac: mac}
	q := &packetQueue{
		transport: ft,
		addrs:     transport.NewAddressTable(),
		engine:    newEngine(),
	}
	q.interest = newInterestTracker(nil, ft.Fd())
	q.engine.onDone = func(pr *PendingRequest) { q.interest.onResolved(pr.Kind) }
	return q, ft
}

func TestPacketQueuePopReceivesMatchingFrame(t *testing.T) {
	serverMAC := protocol.MAC{0x02, 0, 0, 0, 0, 5}
	q, ft := newFakePacketQueue(serverMAC)
	if err := q.Bind(api.Addr{IP: [4]byte{10, 0, 0, 5}, Port: 9000}); err != nil {
		t.Fatal(err)
	}

	clientMAC := protocol.MAC{0x02, 0, 0, 0, 0, 6}
	sga := &api.SGA{Segments: []api.Segment{{Buf: []byte("ping")}}}
	frame, err := protocol.EncodePacket(clientMAC, serverMAC, [4]byte{10, 0, 0, 6}, [4]byte{10, 0, 0, 5}, 40000, 9000, sga)
	if err != nil {
		t.Fatal(err)
	}
	ft.inject(frame)

	recv := &api.SGA{}
	qt := api.QueueToken(1)
	n, err := q.Pop(qt, recv)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 bytes, got %d", n)
	}
	if recv.Addr.IP != [4]byte{10, 0, 0, 6} || recv.Addr.Port != 40000 {
		t.Fatalf("unexpected peer address: %+v", recv.Addr)
	}
}

func TestPacketQueueDropsMismatchedPortWithoutCompletingPop(t *testing.T) {
	serverMAC := protocol.MAC{0x02, 0, 0, 0, 0, 5}
	q, ft := newFakePacketQueue(serverMAC)
	if err := q.Bind(api.Addr{IP: [4]byte{10, 0, 0, 5}, Port: 9000}); err != nil {
		t.Fatal(err)
	}

	clientMAC := protocol.MAC{0x02, 0, 0, 0, 0, 6}
	sga := &api.SGA{Segments: []api.Segment{{Buf: []byte("ping")}}}
	frame, err := protocol.EncodePacket(clientMAC, serverMAC, [4]byte{10, 0, 0, 6}, [4]byte{10, 0, 0, 5}, 40000, 9001, sga)
	if err != nil {
		t.Fatal(err)
	}
	ft.inject(frame)

	recv := &api.SGA{}
	qt := api.QueueToken(1)
	n, err := q.Pop(qt, recv)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected a mismatched-port packet to never complete this pop, got n=%d", n)
	}
}

func TestPacketQueuePushEncodesEthernetFrame(t *testing.T) {
	clientMAC := protocol.MAC{0x02, 0, 0, 0, 0, 6}
	q, ft := newFakePacketQueue(clientMAC)
	if err := q.Connect(api.Addr{IP: [4]byte{10, 0, 0, 5}, Port: 9000}); err != nil {
		t.Fatal(err)
	}

	sga := &api.SGA{Segments: []api.Segment{{Buf: []byte("ping")}}}
	qt := api.QueueToken(2)
	n, err := q.Push(qt, sga)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected push result 4, got %d", n)
	}
	if len(ft.sent) != 1 {
		t.Fatalf("expected exactly one frame sent, got %d", len(ft.sent))
	}
	dp, err := protocol.DecodePacket(ft.sent[0], protocol.Broadcast, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if dp == nil || len(dp.Segments) != 1 || string(dp.Segments[0].Buf) != "ping" {
		t.Fatalf("unexpected sent frame contents: %+v", dp)
	}
}

// A single RecvBurst can return several frames this queue cares about; the
// second match must survive for a later Pop rather than being discarded
// when the first Pop's recvMatching call only needed one.
func TestPacketQueueBacklogsExtraMatchesFromOneBurst(t *testing.T) {
	serverMAC := protocol.MAC{0x02, 0, 0, 0, 0, 5}
	q, ft := newFakePacketQueue(serverMAC)
	if err := q.Bind(api.Addr{IP: [4]byte{10, 0, 0, 5}, Port: 9000}); err != nil {
		t.Fatal(err)
	}

	clientMAC := protocol.MAC{0x02, 0, 0, 0, 0, 6}
	first := &api.SGA{Segments: []api.Segment{{Buf: []byte("one")}}}
	second := &api.SGA{Segments: []api.Segment{{Buf: []byte("two")}}}
	f1, err := protocol.EncodePacket(clientMAC, serverMAC, [4]byte{10, 0, 0, 6}, [4]byte{10, 0, 0, 5}, 40000, 9000, first)
	if err != nil {
		t.Fatal(err)
	}
	f2, err := protocol.EncodePacket(clientMAC, serverMAC, [4]byte{10, 0, 0, 6}, [4]byte{10, 0, 0, 5}, 40000, 9000, second)
	if err != nil {
		t.Fatal(err)
	}
	ft.inject(f1)
	ft.inject(f2)

	recv1 := &api.SGA{}
	if n, err := q.Pop(api.QueueToken(1), recv1); err != nil || n != 3 || string(recv1.Segments[0].Buf) != "one" {
		t.Fatalf("first pop: n=%d err=%v sga=%+v", n, err, recv1)
	}

	recv2 := &api.SGA{}
	n, err := q.Pop(api.QueueToken(3), recv2)
	if err != nil {
		t.Fatalf("second pop: %v", err)
	}
	if n != 3 || string(recv2.Segments[0].Buf) != "two" {
		t.Fatalf("expected the burst's second matching frame on the next pop, got n=%d sga=%+v", n, recv2)
	}
}
