// File: core/protocol/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package protocol implements the two frame codecs that carry a
// scatter-gather array over each transport backend: a magic-tagged,
// length-prefixed envelope over a byte stream, and a single-datagram
// Ethernet/IPv4/UDP envelope over raw packets.
package protocol
