// File: core/queue/manager.go
// Author: momentics <momentics@gmail.com>
//
// The process-wide queue descriptor table. QDs are minted monotonically
// and never reused, a stricter guarantee than the "reused only after
// close" contract, and one that removes any need to guard against a
// stale qd aliasing a live one.

package queue

import (
	"sync"

	"github.com/hioload/zeusq/api"
)

var (
	mgrMu   sync.Mutex
	mgrNext int
	mgrTbl  = make(map[int]api.Queue)
)

func registerQueue(q api.Queue) int {
	mgrMu.Lock()
	defer mgrMu.Unlock()
	mgrNext++
	qd := mgrNext
	mgrTbl[qd] = q
	return qd
}

func unregisterQueue(qd int) {
	mgrMu.Lock()
	defer mgrMu.Unlock()
	delete(mgrTbl, qd)
}

// Lookup returns the queue registered under qd.
func Lookup(qd int) (api.Queue, bool) {
	mgrMu.Lock()
	defer mgrMu.Unlock()
	q, ok := mgrTbl[qd]
	return q, ok
}
