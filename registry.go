package main

import (
	"fmt"
	"net"
	"net/netip"
	"os"

	"gopkg.in/yaml.v3"
)

// RegistryEntry is a trusted known device. Entries are immutable once loaded.
type RegistryEntry struct {
	Name string `yaml:"name"`
	IP   string `yaml:"ip"`
	MAC  string `yaml:"mac"`
}

type registryFile struct {
	Devices []RegistryEntry `yaml:"devices"`
}

// Registry is the ordered list of known devices. The first matching entry wins
// and duplicates are not rejected.
type Registry struct {
	entries []RegistryEntry
}

func NewRegistry(entries []RegistryEntry) *Registry {
	return &Registry{entries: append([]RegistryEntry(nil), entries...)}
}

// LoadRegistry reads the YAML file and then the SQLite store, in that order.
// Either source may be empty.
func LoadRegistry(cfg RegistryConfig) (*Registry, error) {
	var entries []RegistryEntry

	if cfg.File != "" {
		fromFile, err := loadRegistryFile(cfg.File)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fromFile...)
	}

	if cfg.DB != "" {
		store, err := OpenRegistryStore(cfg.DB)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		fromDB, err := store.List()
		if err != nil {
			return nil, err
		}
		entries = append(entries, fromDB...)
	}

	return NewRegistry(entries), nil
}

func loadRegistryFile(path string) ([]RegistryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	out := make([]RegistryEntry, 0, len(f.Devices))
	for i, e := range f.Devices {
		n, err := normalizeEntry(e)
		if err != nil {
			return nil, fmt.Errorf("%s: device %d: %w", path, i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// normalizeEntry puts IP and MAC into the same form the prober reports.
func normalizeEntry(e RegistryEntry) (RegistryEntry, error) {
	if e.Name == "" {
		return e, fmt.Errorf("%w: empty name", ErrInvalidEntry)
	}

	ip, err := netip.ParseAddr(e.IP)
	if err != nil || !ip.Is4() {
		return e, fmt.Errorf("%w: %q is not an IPv4 address", ErrInvalidEntry, e.IP)
	}

	mac, err := net.ParseMAC(e.MAC)
	if err != nil {
		return e, fmt.Errorf("%w: %q is not a MAC address", ErrInvalidEntry, e.MAC)
	}

	return RegistryEntry{Name: e.Name, IP: ip.String(), MAC: mac.String()}, nil
}

func (r *Registry) Entries() []RegistryEntry {
	return append([]RegistryEntry(nil), r.entries...)
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Lookup returns the name of the first entry matching both addresses exactly.
func (r *Registry) Lookup(ip, mac string) (string, bool) {
	for _, e := range r.entries {
		if e.IP == ip && e.MAC == mac {
			return e.Name, true
		}
	}
	return "", false
}

// Resolve produces one record per discovered host, in the same order.
func (r *Registry) Resolve(hosts []DiscoveredHost) []DeviceRecord {
	out := make([]DeviceRecord, 0, len(hosts))
	for _, h := range hosts {
		rec := DeviceRecord{
			Name: unknownName,
			IP:   h.IP.String(),
			MAC:  h.MAC.String(),
		}
		if name, ok := r.Lookup(rec.IP, rec.MAC); ok {
			rec.Name = name
		}
		out = append(out, rec)
	}
	return out
}
