// Package pool
// Author: momentics <momentics@gmail.com>
//
// NUMA-segmented, zero-copy buffer pooling for pending-request payload
// allocation: the stream decoder's payload buffer and the packet decoder's
// per-segment copies both draw from DefaultPool() instead of a raw make.
// All primitives are cross-platform (Linux/Windows). SyncPool additionally
// recycles the queue engine's PendingRequest records across submissions.
// See bufferpool.go and objpool.go for implementation details.
package pool
