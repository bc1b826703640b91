// File: api/sga.go
// Author: momentics <momentics@gmail.com>
//
// Scatter-gather array: the payload shape shared by the push/pop data plane
// and by both frame codecs. A segment borrows its buffer on push and owns an
// allocated one on pop.

package api

// Segment is a single (length, buffer) pair. Length is len(Buf); the field
// exists so a zero-length segment is distinguishable from a nil one.
type Segment struct {
	Buf []byte
}

// MaxSegments is the minimum segment-count capacity implementations must
// support per SGA, per the scatter-gather array data model.
const MaxSegments = 8

// Addr is a transport-neutral IPv4 address and port. On a popped SGA the
// stream backend leaves it unset (the peer is the connected socket's); the
// packet backend fills it with the sender's UDP-style address.
type Addr struct {
	IP   [4]byte
	Port uint16
}

// IsZero reports whether the address carries no information.
func (a Addr) IsZero() bool {
	return a.IP == [4]byte{} && a.Port == 0
}

// SGA is an ordered sequence of segments plus an optional peer address.
type SGA struct {
	Segments []Segment
	Addr     Addr
}

// PayloadLen returns the sum of all segment lengths.
func (s *SGA) PayloadLen() int {
	n := 0
	for _, seg := range s.Segments {
		n += len(seg.Buf)
	}
	return n
}
