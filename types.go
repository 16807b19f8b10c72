package main

import (
	"context"
	"net"
	"net/netip"
)

const unknownName = "unknown"

// DiscoveredHost is one ARP reply seen during a sweep.
type DiscoveredHost struct {
	IP  netip.Addr
	MAC net.HardwareAddr
}

// DeviceRecord is a discovered host after registry resolution.
// Records are compared with ==, so every field takes part in equality.
type DeviceRecord struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
	MAC  string `json:"mac"`
}

// IdentityPair is the stable identity of a physical host across sweeps.
type IdentityPair struct {
	IP  string
	MAC string
}

func (d DeviceRecord) Identity() IdentityPair {
	return IdentityPair{IP: d.IP, MAC: d.MAC}
}

func (d DeviceRecord) Unknown() bool {
	return d.Name == unknownName
}

// Host is a display row: a resolved record plus best-effort enrichment.
type Host struct {
	DeviceRecord
	Vendor   string `json:"vendor,omitempty"`
	Hostname string `json:"hostname,omitempty"`
}

type Prober interface {
	// Sweep returns every reply received within the probe window, in arrival order.
	Sweep(ctx context.Context) ([]DiscoveredHost, error)
}
