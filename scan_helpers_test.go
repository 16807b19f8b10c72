package main

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"192.168.1.0/24", "192.168.1.0/24", false},
		{"192.168.1.77/24", "192.168.1.0/24", false},
		{" 10.0.0.5 ", "10.0.0.5/32", false},
		{"10.0.0.0/30", "10.0.0.0/30", false},
		{"fe80::/64", "", true},
		{"not-an-ip", "", true},
		{"10.0.0.0/33", "", true},
	}

	for _, tt := range tests {
		got, err := parseRange(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidRange, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got.String(), tt.input)
	}
}

func TestRangeAddrs_SkipsSelf(t *testing.T) {
	p := netip.MustParsePrefix("10.0.0.0/30")
	self := netip.MustParseAddr("10.0.0.1")

	got := rangeAddrs(p, self)
	assert.Equal(t, []netip.Addr{
		netip.MustParseAddr("10.0.0.0"),
		netip.MustParseAddr("10.0.0.2"),
		netip.MustParseAddr("10.0.0.3"),
	}, got)
}

func TestRangeAddrs_Size(t *testing.T) {
	p := netip.MustParsePrefix("192.168.1.0/24")
	assert.Len(t, rangeAddrs(p, netip.MustParseAddr("192.168.2.1")), 256)
	assert.Len(t, rangeAddrs(netip.MustParsePrefix("192.168.1.9/32"), netip.Addr{}), 1)
}

func TestSweepTargetAccept(t *testing.T) {
	target := &sweepTarget{
		rng:    netip.MustParsePrefix("10.0.0.0/24"),
		selfIP: netip.MustParseAddr("10.0.0.2"),
	}

	assert.True(t, target.accept(netip.MustParseAddr("10.0.0.5")))
	assert.False(t, target.accept(netip.MustParseAddr("10.0.0.2")), "self")
	assert.False(t, target.accept(netip.MustParseAddr("0.0.0.0")), "ARP probe sender")
	assert.False(t, target.accept(netip.MustParseAddr("10.0.1.5")), "outside range")
}

func TestAddHost_KeepsRepeatedReplies(t *testing.T) {
	h := host("10.0.0.5", "aa:bb:cc:dd:ee:ff")

	var hosts []DiscoveredHost
	hosts = addHost(h.IP, h.MAC, hosts)
	hosts = addHost(h.IP, h.MAC, hosts)
	assert.Len(t, hosts, 2)
}

func TestDedupeByIdentity(t *testing.T) {
	hosts := []DiscoveredHost{
		host("10.0.0.5", "aa:bb:cc:dd:ee:ff"),
		host("10.0.0.1", "00:11:22:33:44:55"),
		host("10.0.0.5", "aa:bb:cc:dd:ee:ff"),
		host("10.0.0.5", "aa:bb:cc:dd:ee:00"),
	}

	got := dedupeByIdentity(hosts)
	assert.Equal(t, []DiscoveredHost{hosts[0], hosts[1], hosts[3]}, got)
}

func TestVendorFor(t *testing.T) {
	assert.Equal(t, "Apple", vendorFor("3c:22:fb:00:00:01"))
	assert.Equal(t, "", vendorFor("aa:bb:cc:dd:ee:ff"))
	assert.Equal(t, "", vendorFor("aa"))
}
