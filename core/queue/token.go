// File: core/queue/token.go
// Author: momentics <momentics@gmail.com>
//
// NextToken mints a fresh per-queue token. Token generation is formally
// the caller's responsibility (the queue only exposes api.IsPush as a
// predicate), but every concrete queue object carries its own allocator so
// callers do not have to invent one.

package queue

import "github.com/hioload/zeusq/api"

// NextToken mints a unique token from q's own allocator. push selects the
// operation bit: true for an upcoming Push, false for an upcoming Pop.
func NextToken(q api.Queue, push bool) api.QueueToken {
	switch t := q.(type) {
	case *streamQueue:
		return t.tokens.Next(push)
	case *packetQueue:
		return t.tokens.Next(push)
	default:
		panic("queue: NextToken called on an unrecognized Queue implementation")
	}
}
