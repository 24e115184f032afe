// ABOUTME: Tests for mDNS discovery
// ABOUTME: Validates manager lifecycle, TXT records and entry parsing
package discovery

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/mdns"

	"github.com/harperreed/flipit/internal/version"
)

func TestNewManager(t *testing.T) {
	config := Config{
		ServiceName: "Test Game",
		Port:        8930,
	}

	mgr := NewManager(config)
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	defer mgr.Stop()

	if mgr.config.ServiceName != "Test Game" {
		t.Errorf("expected ServiceName 'Test Game', got '%s'", mgr.config.ServiceName)
	}
	if mgr.Servers() == nil {
		t.Error("Servers() returned nil channel")
	}
}

func TestManagerStop(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "test", Port: 8930})
	mgr.Stop()

	select {
	case <-mgr.ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Error("context should be cancelled after Stop()")
	}
}

func TestTXTRecords(t *testing.T) {
	records := txtRecords()
	joined := strings.Join(records, " ")

	if !strings.Contains(joined, "path=/ws") {
		t.Errorf("expected path=/ws in %v", records)
	}
	if !strings.Contains(joined, "version="+version.Version) {
		t.Errorf("expected version in %v", records)
	}
}

func TestServerInfoFromEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *mdns.ServiceEntry
		expected *ServerInfo
	}{
		{
			name:     "nil entry",
			entry:    nil,
			expected: nil,
		},
		{
			name:     "no ipv4 address",
			entry:    &mdns.ServiceEntry{Name: "x", Port: 1},
			expected: nil,
		},
		{
			name: "txt fields",
			entry: &mdns.ServiceEntry{
				Name:       "Game._flipit._tcp.local.",
				AddrV4:     net.ParseIP("192.168.1.20"),
				Port:       8930,
				InfoFields: []string{"path=/feed", "version=9.9.9", "junk"},
			},
			expected: &ServerInfo{
				Name:    "Game._flipit._tcp.local.",
				Host:    "192.168.1.20",
				Port:    8930,
				Path:    "/feed",
				Version: "9.9.9",
			},
		},
		{
			name: "default path",
			entry: &mdns.ServiceEntry{
				Name:   "Game",
				AddrV4: net.ParseIP("10.0.0.2"),
				Port:   9000,
			},
			expected: &ServerInfo{Name: "Game", Host: "10.0.0.2", Port: 9000, Path: "/ws"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serverInfo(tt.entry)
			if tt.expected == nil {
				if got != nil {
					t.Errorf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil || *got != *tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestServerInfoAddr(t *testing.T) {
	info := &ServerInfo{Host: "192.168.1.100", Port: 8930}
	if got := info.Addr(); got != "192.168.1.100:8930" {
		t.Errorf("expected 192.168.1.100:8930, got %s", got)
	}
}

func TestGetLocalIPs(t *testing.T) {
	ips, err := getLocalIPs()
	if err != nil {
		t.Fatalf("getLocalIPs failed: %v", err)
	}

	for _, ip := range ips {
		if ip.To4() == nil {
			t.Errorf("getLocalIPs returned non-IPv4 address: %v", ip)
		}
		if ip.IsLoopback() {
			t.Errorf("getLocalIPs returned loopback address: %v", ip)
		}
	}
}
