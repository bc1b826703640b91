// File: api/queue.go
// Author: momentics <momentics@gmail.com>
//
// Queue is the public contract shared by both backends: a per-endpoint
// object holding a transport handle, an accept backlog, a work queue and a
// pending-request map, exposing the control-plane and data-plane operations
// applications call against a queue descriptor.

package api

// Queue is the polymorphic contract implemented by the stream backend and
// the packet backend. Return-value convention for the data plane: 0 means
// "not yet", a positive value means bytes transferred, and a non-nil error
// means a hard failure (protocol or transport).
type Queue interface {
	QD() int

	// Control plane.
	Bind(addr Addr) error
	Listen(backlog int) error
	Connect(addr Addr) error
	// Accept returns a freshly accepted queue, or (nil, Addr{}, nil) when no
	// connection is pending.
	Accept() (Queue, Addr, error)
	// LocalAddr reports the queue's local address once bound or connected.
	LocalAddr() (Addr, error)
	Close() error

	// Data plane.
	Push(qt QueueToken, sga *SGA) (int, error)
	Pop(qt QueueToken, sga *SGA) (int, error)
	Peek(sga *SGA) (int, error)
	Wait(qt QueueToken, sga *SGA) (int, error)
	Poll(qt QueueToken, sga *SGA) (int, error)
	// Drop cancels qt's request without blocking; a parked request is not
	// attempted again and its result is discarded.
	Drop(qt QueueToken) error
}
