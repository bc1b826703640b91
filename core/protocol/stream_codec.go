// File: core/protocol/stream_codec.go
// Author: momentics <momentics@gmail.com>
//
// Stream-backend frame codec: a magic-tagged, length-prefixed envelope
// carrying a scatter-gather array over a byte stream.
//
//	offset 0:  u64 magic
//	offset 8:  u64 payload_len (bytes after the 24-byte header)
//	offset 16: u64 seg_count
//	payload:   seg_count records of (u64 length, length bytes)
//
// Length fields are host-byte-order; the wire format is point-to-point
// within one architecture, so this implementation fixes little-endian
// rather than perform an endianness negotiation the spec does not call for.

package protocol

import (
	"encoding/binary"

	"github.com/hioload/zeusq/api"
	"github.com/hioload/zeusq/pool"
)

// Magic begins every stream-backend frame.
const Magic uint64 = 0x5a45555351544654

// StreamHeaderLen is the fixed header size in bytes.
const StreamHeaderLen = 24

// MaxFramePayload defines the maximum payload length a frame header may
// declare. The header fields are peer-controlled; a declaration past this
// bound is a protocol error, never an allocation attempt.
const MaxFramePayload = 1 << 20 // 1 MiB

// EncodeStream builds the I/O vector for sga: the 24-byte header, then for
// each segment an 8-byte length cell and the segment body. The returned
// slices alias sga's own buffers; the caller must keep them live until the
// write completes.
func EncodeStream(sga *api.SGA) ([][]byte, error) {
	if len(sga.Segments) == 0 {
		return nil, api.ErrInvalidArgument
	}
	var payloadLen uint64
	for _, seg := range sga.Segments {
		payloadLen += 8 + uint64(len(seg.Buf))
	}

	header := make([]byte, StreamHeaderLen)
	binary.LittleEndian.PutUint64(header[0:8], Magic)
	binary.LittleEndian.PutUint64(header[8:16], payloadLen)
	binary.LittleEndian.PutUint64(header[16:24], uint64(len(sga.Segments)))

	iov := make([][]byte, 0, 2*len(sga.Segments)+1)
	iov = append(iov, header)
	for _, seg := range sga.Segments {
		cell := make([]byte, 8)
		binary.LittleEndian.PutUint64(cell, uint64(len(seg.Buf)))
		iov = append(iov, cell, seg.Buf)
	}
	return iov, nil
}

// StreamDecoder progressively decodes one frame, tolerating reads that
// deliver as little as one byte at a time. Zero value is ready to use.
type StreamDecoder struct {
	header     [StreamHeaderLen]byte
	cursor     int
	headerDone bool
	payloadLen uint64
	segCount   uint64
	payload    []byte
}

// Done reports whether the full frame (header and payload) is buffered.
func (d *StreamDecoder) Done() bool {
	return d.headerDone && d.cursor >= StreamHeaderLen+int(d.payloadLen)
}

// NextChunk returns the slice the next read should land in, or nil once the
// header is buffered but not yet parsed (the caller must call ParseHeader
// before requesting the payload region).
func (d *StreamDecoder) NextChunk() []byte {
	if d.cursor < StreamHeaderLen {
		return d.header[d.cursor:]
	}
	if !d.headerDone {
		return nil
	}
	off := d.cursor - StreamHeaderLen
	if off >= len(d.payload) {
		return nil
	}
	return d.payload[off:]
}

// Advance records that n bytes were placed into the slice last returned by
// NextChunk. Partial reads never delete bytes already placed.
func (d *StreamDecoder) Advance(n int) {
	d.cursor += n
}

// ParseStreamHeader validates a fully-buffered 24-byte header, returning
// the declared payload length and segment count. A zero-segment frame is
// invalid, as is a payload length past MaxFramePayload or a segment count
// the declared payload cannot hold (each record carries an 8-byte length
// cell at minimum).
func ParseStreamHeader(hdr []byte) (payloadLen, segCount uint64, err error) {
	if binary.LittleEndian.Uint64(hdr[0:8]) != Magic {
		return 0, 0, api.ErrProtocol
	}
	payloadLen = binary.LittleEndian.Uint64(hdr[8:16])
	segCount = binary.LittleEndian.Uint64(hdr[16:24])
	if payloadLen > MaxFramePayload {
		return 0, 0, api.ErrProtocol
	}
	if segCount == 0 || segCount > payloadLen/8 {
		return 0, 0, api.ErrProtocol
	}
	return payloadLen, segCount, nil
}

// SliceSegments cuts a fully-buffered payload into its segCount
// (u64 length, bytes) records. The returned segment buffers alias payload;
// the concatenated records must consume it exactly. segCount is bounded
// against the payload before it sizes anything, so a caller-supplied wire
// value cannot force an oversized allocation.
func SliceSegments(payload []byte, segCount uint64) ([]api.Segment, error) {
	if segCount > uint64(len(payload))/8 {
		return nil, api.ErrProtocol
	}
	segs := make([]api.Segment, 0, segCount)
	off := 0
	for i := uint64(0); i < segCount; i++ {
		if off+8 > len(payload) {
			return nil, api.ErrProtocol
		}
		segLen := binary.LittleEndian.Uint64(payload[off : off+8])
		off += 8
		if segLen > uint64(len(payload)-off) {
			return nil, api.ErrProtocol
		}
		segs = append(segs, api.Segment{Buf: payload[off : off+int(segLen)]})
		off += int(segLen)
	}
	if off != len(payload) {
		return nil, api.ErrProtocol
	}
	return segs, nil
}

// ParseHeader validates the magic and allocates the payload buffer from the
// process-wide default pool. Callers must invoke it exactly once, as soon
// as the cursor first reaches StreamHeaderLen.
func (d *StreamDecoder) ParseHeader() error {
	payloadLen, segCount, err := ParseStreamHeader(d.header[:])
	if err != nil {
		return err
	}
	d.payloadLen, d.segCount = payloadLen, segCount
	d.payload = pool.DefaultPool().Get(int(d.payloadLen), -1).Bytes()
	d.headerDone = true
	return nil
}

// HeaderBuffered reports whether the header's 24 bytes have all arrived,
// i.e. whether it is time to call ParseHeader.
func (d *StreamDecoder) HeaderBuffered() bool {
	return d.cursor >= StreamHeaderLen
}

// HeaderParsed reports whether ParseHeader has already run.
func (d *StreamDecoder) HeaderParsed() bool {
	return d.headerDone
}

// Segments slices the fully-buffered payload into the declared segments.
// The returned segment buffers alias the decoder's payload buffer;
// ownership of that buffer transfers to the caller.
func (d *StreamDecoder) Segments() ([]api.Segment, error) {
	return SliceSegments(d.payload, d.segCount)
}
