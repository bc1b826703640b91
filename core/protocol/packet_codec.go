// File: core/protocol/packet_codec.go
// Author: momentics <momentics@gmail.com>
//
// Packet-backend frame codec: a single Ethernet/IPv4/UDP datagram carrying a
// scatter-gather array. Fragmentation across packets is not supported.
//
//	Ethernet header (14 bytes, ethertype = IPv4)
//	IPv4 header    (20 bytes, VHL=0x45, TTL=64, proto=UDP)
//	UDP header     (8 bytes)
//	u32 seg_count
//	for each segment: u32 length, length bytes

package protocol

import (
	"encoding/binary"

	"github.com/hioload/zeusq/api"
	"github.com/hioload/zeusq/pool"
)

const (
	EthHeaderLen  = 14
	IPv4HeaderLen = 20
	UDPHeaderLen  = 8
	EtherTypeIPv4 = 0x0800
	ProtoUDP      = 17
)

// MAC is a 6-byte Ethernet hardware address.
type MAC [6]byte

// Broadcast is the Ethernet broadcast address.
var Broadcast = MAC{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// EncodePacket builds a single raw frame carrying sga's segments.
func EncodePacket(srcMAC, dstMAC MAC, srcIP, dstIP [4]byte, srcPort, dstPort uint16, sga *api.SGA) ([]byte, error) {
	if len(sga.Segments) == 0 {
		return nil, api.ErrInvalidArgument
	}

	payloadLen := 4
	for _, seg := range sga.Segments {
		payloadLen += 4 + len(seg.Buf)
	}
	total := EthHeaderLen + IPv4HeaderLen + UDPHeaderLen + payloadLen
	buf := make([]byte, total)

	copy(buf[0:6], dstMAC[:])
	copy(buf[6:12], srcMAC[:])
	binary.BigEndian.PutUint16(buf[12:14], EtherTypeIPv4)

	ipOff := EthHeaderLen
	udpOff := ipOff + IPv4HeaderLen
	payloadOff := udpOff + UDPHeaderLen

	buf[ipOff+0] = 0x45 // version 4, header length 5 words
	buf[ipOff+1] = 0    // DSCP/ECN
	// total_length covers the whole IPv4 payload, not just the fixed
	// headers; the original implementation this codec is modeled on sets
	// it to sizeof(udp_hdr)+sizeof(ipv4_hdr) regardless of payload size,
	// which undercounts for any non-empty frame. We compute it correctly.
	totalLength := uint16(IPv4HeaderLen + UDPHeaderLen + payloadLen)
	binary.BigEndian.PutUint16(buf[ipOff+2:ipOff+4], totalLength)
	binary.BigEndian.PutUint16(buf[ipOff+4:ipOff+6], 0) // identification
	binary.BigEndian.PutUint16(buf[ipOff+6:ipOff+8], 0) // flags/fragment offset
	buf[ipOff+8] = 64                                   // TTL
	buf[ipOff+9] = ProtoUDP
	binary.BigEndian.PutUint16(buf[ipOff+10:ipOff+12], 0) // checksum, filled below
	copy(buf[ipOff+12:ipOff+16], srcIP[:])
	copy(buf[ipOff+16:ipOff+20], dstIP[:])
	binary.BigEndian.PutUint16(buf[ipOff+10:ipOff+12], ipv4Checksum(buf[ipOff:ipOff+IPv4HeaderLen]))

	binary.BigEndian.PutUint16(buf[udpOff+0:udpOff+2], srcPort)
	binary.BigEndian.PutUint16(buf[udpOff+2:udpOff+4], dstPort)
	binary.BigEndian.PutUint16(buf[udpOff+4:udpOff+6], uint16(UDPHeaderLen+payloadLen))
	binary.BigEndian.PutUint16(buf[udpOff+6:udpOff+8], 0) // checksum omitted, per spec

	binary.BigEndian.PutUint32(buf[payloadOff:payloadOff+4], uint32(len(sga.Segments)))
	off := payloadOff + 4
	for _, seg := range sga.Segments {
		binary.BigEndian.PutUint32(buf[off:off+4], uint32(len(seg.Buf)))
		off += 4
		copy(buf[off:off+len(seg.Buf)], seg.Buf)
		off += len(seg.Buf)
	}
	return buf, nil
}

// ipv4Checksum computes the one's-complement sum over a 20-byte IPv4
// header, folded then complemented; hdr's checksum field must be zero.
func ipv4Checksum(hdr []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(hdr); i += 2 {
		sum += uint32(hdr[i])<<8 | uint32(hdr[i+1])
	}
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return ^uint16(sum)
}

// DecodedPacket is a successfully parsed and validated received frame.
type DecodedPacket struct {
	Segments []api.Segment
	SrcIP    [4]byte
	SrcPort  uint16
	DstIP    [4]byte
	DstPort  uint16
}

// DecodePacket validates and parses one received raw frame. A nil
// DecodedPacket with a nil error means the packet must be silently
// dropped (wrong MAC, ethertype, protocol, destination IP, or port).
func DecodePacket(frame []byte, localMAC MAC, boundIP *[4]byte, boundPort uint16) (*DecodedPacket, error) {
	if len(frame) < EthHeaderLen+IPv4HeaderLen+UDPHeaderLen+4 {
		return nil, nil
	}
	var dstMAC MAC
	copy(dstMAC[:], frame[0:6])
	if dstMAC != localMAC && dstMAC != Broadcast {
		return nil, nil
	}
	if binary.BigEndian.Uint16(frame[12:14]) != EtherTypeIPv4 {
		return nil, nil
	}

	ipOff := EthHeaderLen
	if frame[ipOff]>>4 != 4 {
		return nil, nil
	}
	if frame[ipOff+9] != ProtoUDP {
		return nil, nil
	}
	var srcIP, dstIP [4]byte
	copy(srcIP[:], frame[ipOff+12:ipOff+16])
	copy(dstIP[:], frame[ipOff+16:ipOff+20])
	if boundIP != nil && dstIP != *boundIP {
		return nil, nil
	}

	udpOff := ipOff + IPv4HeaderLen
	srcPort := binary.BigEndian.Uint16(frame[udpOff : udpOff+2])
	dstPort := binary.BigEndian.Uint16(frame[udpOff+2 : udpOff+4])
	if boundPort != 0 && dstPort != boundPort {
		return nil, nil
	}

	payloadOff := udpOff + UDPHeaderLen
	if payloadOff+4 > len(frame) {
		return nil, nil
	}
	segCount := binary.BigEndian.Uint32(frame[payloadOff : payloadOff+4])
	off := payloadOff + 4
	// segCount is peer-controlled; each record carries a 4-byte length cell
	// at minimum, so a declaration the frame cannot hold is dropped before
	// it sizes an allocation.
	if segCount > uint32(len(frame)-off)/4 {
		return nil, nil
	}
	segs := make([]api.Segment, 0, segCount)
	for i := uint32(0); i < segCount; i++ {
		if off+4 > len(frame) {
			return nil, nil
		}
		segLen := binary.BigEndian.Uint32(frame[off : off+4])
		off += 4
		if off+int(segLen) > len(frame) {
			return nil, nil
		}
		// Copy out of the packet buffer so the driver's mbuf can be freed,
		// drawing the destination from the default pool rather than a raw
		// make, since these buffers live as long as the caller keeps them.
		cp := pool.DefaultPool().Get(int(segLen), -1).Bytes()
		copy(cp, frame[off:off+int(segLen)])
		segs = append(segs, api.Segment{Buf: cp})
		off += int(segLen)
	}
	return &DecodedPacket{Segments: segs, SrcIP: srcIP, SrcPort: srcPort, DstIP: dstIP, DstPort: dstPort}, nil
}
