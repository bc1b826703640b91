package protocol_test

import (
	"encoding/binary"
	"testing"

	"github.com/hioload/zeusq/api"
	"github.com/hioload/zeusq/core/protocol"
)

func TestPacketRoundTrip(t *testing.T) {
	srcMAC := protocol.MAC{0x02, 0, 0, 0, 0, 1}
	dstMAC := protocol.MAC{0x02, 0, 0, 0, 0, 2}
	srcIP := [4]byte{10, 0, 0, 6}
	dstIP := [4]byte{10, 0, 0, 5}
	sga := &api.SGA{Segments: []api.Segment{{Buf: []byte("ping")}}}

	frame, err := protocol.EncodePacket(srcMAC, dstMAC, srcIP, dstIP, 40000, 9000, sga)
	if err != nil {
		t.Fatal(err)
	}

	dp, err := protocol.DecodePacket(frame, dstMAC, &dstIP, 9000)
	if err != nil {
		t.Fatal(err)
	}
	if dp == nil {
		t.Fatal("expected a decoded packet, got a drop")
	}
	if len(dp.Segments) != 1 || string(dp.Segments[0].Buf) != "ping" {
		t.Fatalf("unexpected segments: %+v", dp.Segments)
	}
	if dp.SrcIP != srcIP || dp.SrcPort != 40000 {
		t.Fatalf("unexpected peer address: %+v", dp)
	}
}

func TestPacketDropsWrongPort(t *testing.T) {
	srcMAC := protocol.MAC{0x02, 0, 0, 0, 0, 1}
	dstMAC := protocol.MAC{0x02, 0, 0, 0, 0, 2}
	srcIP := [4]byte{10, 0, 0, 6}
	dstIP := [4]byte{10, 0, 0, 5}
	sga := &api.SGA{Segments: []api.Segment{{Buf: []byte("ping")}}}

	frame, err := protocol.EncodePacket(srcMAC, dstMAC, srcIP, dstIP, 40000, 9000, sga)
	if err != nil {
		t.Fatal(err)
	}

	dp, err := protocol.DecodePacket(frame, dstMAC, &dstIP, 9001)
	if err != nil {
		t.Fatal(err)
	}
	if dp != nil {
		t.Fatal("expected packet bound for a different port to be dropped")
	}
}

// A tiny frame declaring a segment count it cannot hold must be dropped
// before the count sizes an allocation.
func TestPacketDropsOversizedSegmentCount(t *testing.T) {
	srcMAC := protocol.MAC{0x02, 0, 0, 0, 0, 1}
	dstMAC := protocol.MAC{0x02, 0, 0, 0, 0, 2}
	srcIP := [4]byte{10, 0, 0, 6}
	dstIP := [4]byte{10, 0, 0, 5}
	sga := &api.SGA{Segments: []api.Segment{{Buf: []byte("ping")}}}

	frame, err := protocol.EncodePacket(srcMAC, dstMAC, srcIP, dstIP, 40000, 9000, sga)
	if err != nil {
		t.Fatal(err)
	}
	payloadOff := protocol.EthHeaderLen + protocol.IPv4HeaderLen + protocol.UDPHeaderLen
	binary.BigEndian.PutUint32(frame[payloadOff:payloadOff+4], 0xFFFFFFFF)

	dp, err := protocol.DecodePacket(frame, dstMAC, &dstIP, 9000)
	if err != nil {
		t.Fatal(err)
	}
	if dp != nil {
		t.Fatal("expected a frame declaring an impossible segment count to be dropped")
	}
}

func TestPacketDropsWrongMAC(t *testing.T) {
	srcMAC := protocol.MAC{0x02, 0, 0, 0, 0, 1}
	dstMAC := protocol.MAC{0x02, 0, 0, 0, 0, 2}
	other := protocol.MAC{0x02, 0, 0, 0, 0, 3}
	srcIP := [4]byte{10, 0, 0, 6}
	dstIP := [4]byte{10, 0, 0, 5}
	sga := &api.SGA{Segments: []api.Segment{{Buf: []byte("ping")}}}

	frame, err := protocol.EncodePacket(srcMAC, dstMAC, srcIP, dstIP, 40000, 9000, sga)
	if err != nil {
		t.Fatal(err)
	}
	dp, err := protocol.DecodePacket(frame, other, &dstIP, 9000)
	if err != nil {
		t.Fatal(err)
	}
	if dp != nil {
		t.Fatal("expected packet for a different NIC MAC to be dropped")
	}
}
