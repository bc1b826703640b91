// File: zeusq.go
// Author: momentics <momentics@gmail.com>
//
// Unified entry point for the queue library: the classic socket-shaped
// control plane over the two backends, plus the process-wide shared
// context (readiness reactor, MAC<->IPv4 address table) both backends
// draw from. The context is a lazily initialised singleton torn down by
// Shutdown rather than per queue.

package zeusq

import (
	"sync"

	"github.com/hioload/zeusq/api"
	"github.com/hioload/zeusq/core/queue"
	"github.com/hioload/zeusq/internal/transport"
	"github.com/hioload/zeusq/reactor"
)

// Socket domains and types, mirroring the classic sockets API shape.
const (
	AFInet = 2

	SockStream   = 1
	SockDatagram = 2
)

// Config holds parameters immutable per run.
type Config struct {
	// Interface names the NIC the packet backend binds its raw socket to.
	Interface string
	// AddressTableFile points at the flat "mac ip" table consulted in
	// place of ARP; empty leaves the table empty (all sends broadcast).
	AddressTableFile string
}

var (
	mu        sync.Mutex
	initOnce  bool
	cfg       Config
	rct       api.Reactor
	addrTable *transport.AddressTable
)

// Init applies cfg before the first Socket call. Calling Socket without
// Init is fine for the stream backend; the packet backend needs at least
// Config.Interface.
func Init(c Config) error {
	mu.Lock()
	defer mu.Unlock()
	if initOnce {
		return api.ErrAlreadyExists
	}
	cfg = c
	if c.AddressTableFile != "" {
		t, err := transport.LoadAddressTableFile(c.AddressTableFile)
		if err != nil {
			return err
		}
		addrTable = t
	}
	return nil
}

func sharedContext() (api.Reactor, *transport.AddressTable, error) {
	mu.Lock()
	defer mu.Unlock()
	if !initOnce {
		r, err := reactor.New()
		if err != nil {
			return nil, nil, err
		}
		rct = r
		if addrTable == nil {
			addrTable = transport.NewAddressTable()
		}
		initOnce = true
	}
	return rct, addrTable, nil
}

// Socket allocates a queue descriptor. SockStream selects the byte-stream
// backend; SockDatagram selects the packet backend, which refuses any
// other type.
func Socket(domain, sockType, protocol int) (api.Queue, error) {
	if domain != AFInet {
		return nil, api.ErrNotSupported
	}
	r, addrs, err := sharedContext()
	if err != nil {
		return nil, err
	}
	switch sockType {
	case SockStream:
		return queue.NewStreamQueue(r)
	case SockDatagram:
		return queue.NewPacketQueue(cfg.Interface, addrs, r)
	default:
		return nil, api.ErrNotSupported
	}
}

// NextToken mints a unique token for the next Push (push=true) or Pop on q.
func NextToken(q api.Queue, push bool) api.QueueToken {
	return queue.NextToken(q, push)
}

// Shutdown tears down the shared context. Outstanding queues must already
// be closed.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()
	if !initOnce {
		return nil
	}
	initOnce = false
	addrTable = nil
	if rct != nil {
		err := rct.Close()
		rct = nil
		return err
	}
	return nil
}
