package transport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hioload/zeusq/core/protocol"
)

func TestAddressTableRoundTrip(t *testing.T) {
	table := NewAddressTable()
	mac := protocol.MAC{0x02, 0, 0, 0, 0, 1}
	ip := [4]byte{10, 0, 0, 5}
	table.Add(mac, ip)

	got, ok := table.IPFor(mac)
	if !ok || got != ip {
		t.Fatalf("IPFor: got %v,%v want %v,true", got, ok, ip)
	}
	if gotMAC := table.MACFor(ip); gotMAC != mac {
		t.Fatalf("MACFor: got %v want %v", gotMAC, mac)
	}
}

func TestAddressTableUnknownIPResolvesToBroadcast(t *testing.T) {
	table := NewAddressTable()
	if mac := table.MACFor([4]byte{1, 2, 3, 4}); mac != protocol.Broadcast {
		t.Fatalf("expected broadcast for an unregistered IP, got %v", mac)
	}
}

func TestLoadAddressTableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "addrs.conf")
	content := "# comment\n02:00:00:00:00:01 10.0.0.5\n\n02:00:00:00:00:02 10.0.0.6\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadAddressTableFile(path)
	if err != nil {
		t.Fatal(err)
	}
	ip, ok := table.IPFor(protocol.MAC{0x02, 0, 0, 0, 0, 2})
	if !ok || ip != [4]byte{10, 0, 0, 6} {
		t.Fatalf("unexpected lookup result: %v,%v", ip, ok)
	}
}

func TestLoadAddressTableFileRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.conf")
	if err := os.WriteFile(path, []byte("not-a-valid-line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAddressTableFile(path); err == nil {
		t.Fatal("expected an error for a malformed line")
	}
}
