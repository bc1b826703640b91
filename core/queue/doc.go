// File: core/queue/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package queue implements the pending-request engine, the token
// allocator/dispatcher, and the two concrete Queue Objects (stream and
// packet) that sit on top of the frame codecs in core/protocol and the
// transport backends in internal/transport.
package queue
