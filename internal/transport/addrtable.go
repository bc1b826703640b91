// File: internal/transport/addrtable.go
// Author: momentics <momentics@gmail.com>
//
// AddressTable is the process-wide, immutable MAC<->IPv4 mapping the packet
// backend consults instead of ARP: it supplies the source IPv4 for the NIC's
// MAC when the queue is unbound and resolves a destination MAC for a peer IP.

package transport

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/hioload/zeusq/api"
	"github.com/hioload/zeusq/core/protocol"
)

// AddressTable maps between link-layer and network-layer addresses for the
// small, fixed set of peers a packet-backend queue talks to. It is built
// once at startup and never mutated afterward, so lookups need no locking.
type AddressTable struct {
	macToIP map[protocol.MAC][4]byte
	ipToMAC map[[4]byte]protocol.MAC
}

// NewAddressTable returns an empty table ready for Add calls.
func NewAddressTable() *AddressTable {
	return &AddressTable{
		macToIP: make(map[protocol.MAC][4]byte),
		ipToMAC: make(map[[4]byte]protocol.MAC),
	}
}

// Add registers a MAC/IPv4 pair in both directions.
func (t *AddressTable) Add(mac protocol.MAC, ip [4]byte) {
	t.macToIP[mac] = ip
	t.ipToMAC[ip] = mac
}

// IPFor returns the IPv4 address registered for mac.
func (t *AddressTable) IPFor(mac protocol.MAC) ([4]byte, bool) {
	ip, ok := t.macToIP[mac]
	return ip, ok
}

// MACFor resolves the MAC for a destination IP. An unregistered IP falls
// back to the Ethernet broadcast address, mirroring an ARP miss.
func (t *AddressTable) MACFor(ip [4]byte) protocol.MAC {
	if mac, ok := t.ipToMAC[ip]; ok {
		return mac
	}
	return protocol.Broadcast
}

// LoadAddressTableFile parses a "mac ip" pair per non-blank, non-comment
// line, e.g.:
//
//	02:00:00:00:00:01 10.0.0.5
func LoadAddressTableFile(path string) (*AddressTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t := NewAddressTable()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, api.NewError(api.ErrCodeInvalidArgument, "address table: malformed line").
				WithContext("line", line).WithContext("path", path)
		}
		mac, err := parseMAC(fields[0])
		if err != nil {
			return nil, err
		}
		ip, err := parseIPv4(fields[1])
		if err != nil {
			return nil, err
		}
		t.Add(mac, ip)
	}
	return t, sc.Err()
}

func parseMAC(s string) (protocol.MAC, error) {
	var mac protocol.MAC
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return mac, api.NewError(api.ErrCodeInvalidArgument, "invalid MAC address").WithContext("mac", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return mac, api.NewError(api.ErrCodeInvalidArgument, "invalid MAC address").WithContext("mac", s)
		}
		mac[i] = byte(v)
	}
	return mac, nil
}

func parseIPv4(s string) ([4]byte, error) {
	var ip [4]byte
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return ip, api.NewError(api.ErrCodeInvalidArgument, "invalid IPv4 address").WithContext("ip", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return ip, api.NewError(api.ErrCodeInvalidArgument, "invalid IPv4 address").WithContext("ip", s)
		}
		ip[i] = byte(v)
	}
	return ip, nil
}
