package main

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"
)

// ProbeOptions configures one Prober.
type ProbeOptions struct {
	IfaceName string
	Range     string
	Timeout   time.Duration
	Passive   bool
}

func probeOptions(cfg Config) ProbeOptions {
	return ProbeOptions{
		IfaceName: cfg.Interface,
		Range:     cfg.IPRange,
		Timeout:   cfg.ProbeTimeout,
		Passive:   cfg.Passive,
	}
}

// sweepTarget is populated by NewProber (linux + darwin)
type sweepTarget struct {
	iface   *net.Interface
	subnet  netip.Prefix
	rng     netip.Prefix
	selfIP  netip.Addr
	selfMAC string
}

func resolveTarget(opts ProbeOptions) (*sweepTarget, error) {
	var iface *net.Interface
	var ipnet *net.IPNet
	var err error

	if opts.IfaceName != "" {
		iface, ipnet, err = getInterfaceByName(opts.IfaceName)
	} else {
		iface, ipnet, err = getDefaultInterface()
	}
	if err != nil {
		return nil, err
	}

	self, ok := netip.AddrFromSlice(ipnet.IP.To4())
	if !ok {
		return nil, ErrNoIPv4
	}
	ones, _ := ipnet.Mask.Size()
	subnet := netip.PrefixFrom(self, ones).Masked()

	rng := subnet
	if opts.Range != "" {
		rng, err = parseRange(opts.Range)
		if err != nil {
			return nil, err
		}
	}

	return &sweepTarget{
		iface:   iface,
		subnet:  subnet,
		rng:     rng,
		selfIP:  self,
		selfMAC: iface.HardwareAddr.String(),
	}, nil
}

// parseRange accepts a CIDR ("192.168.1.0/24") or a single IPv4 address.
func parseRange(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil || !p.Addr().Is4() {
			return netip.Prefix{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
		return p.Masked(), nil
	}

	ip, err := netip.ParseAddr(s)
	if err != nil || !ip.Is4() {
		return netip.Prefix{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return netip.PrefixFrom(ip, 32), nil
}

// rangeAddrs lists every address of p except self.
func rangeAddrs(p netip.Prefix, self netip.Addr) []netip.Addr {
	var out []netip.Addr
	for ip := p.Masked().Addr(); ip.IsValid() && p.Contains(ip); ip = ip.Next() {
		if ip == self {
			continue
		}
		out = append(out, ip)
	}
	return out
}

// accept reports whether a reply sender belongs in the sweep result.
func (t *sweepTarget) accept(ip netip.Addr) bool {
	return ip.Is4() && !ip.IsUnspecified() && ip != t.selfIP && t.rng.Contains(ip)
}

func addHost(ip netip.Addr, mac net.HardwareAddr, hosts []DiscoveredHost) []DiscoveredHost {
	return append(hosts, DiscoveredHost{
		IP:  ip,
		MAC: append(net.HardwareAddr(nil), mac...),
	})
}

// dedupeByIdentity keeps the first occurrence of each (ip, mac) pair.
func dedupeByIdentity(hosts []DiscoveredHost) []DiscoveredHost {
	seen := make(map[IdentityPair]struct{}, len(hosts))
	out := make([]DiscoveredHost, 0, len(hosts))
	for _, h := range hosts {
		key := IdentityPair{IP: h.IP.String(), MAC: h.MAC.String()}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	return out
}
