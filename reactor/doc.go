// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>
//
// Package reactor implements the event-edge integration: a level-triggered
// readiness notifier that every queue with a live transport handle
// registers with, and whose interest bits track outstanding pushes (write)
// and outstanding pops or listening state (read).
package reactor
