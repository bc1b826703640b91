// File: core/queue/file_queue.go
// Author: momentics <momentics@gmail.com>
//
// File-backed queues share the control-plane shape of the network queues
// but are not implemented; the entry points exist so callers porting from
// a socket-plus-file API surface get a clean unsupported error instead of
// a missing symbol.

package queue

import "github.com/hioload/zeusq/api"

// OpenFileQueue would open an existing file as an I/O queue. Unimplemented.
func OpenFileQueue(path string, flags int) (api.Queue, error) {
	return nil, api.ErrNotSupported
}

// CreateFileQueue would create a file and open it as an I/O queue.
// Unimplemented.
func CreateFileQueue(path string, mode uint32) (api.Queue, error) {
	return nil, api.ErrNotSupported
}
