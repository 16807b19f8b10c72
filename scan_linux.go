package main

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/mdlayher/arp"
)

type LinuxProber struct {
	target  *sweepTarget
	timeout time.Duration
	passive bool
}

func NewProber(opts ProbeOptions) (Prober, *sweepTarget, error) {
	target, err := resolveTarget(opts)
	if err != nil {
		return nil, nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	return &LinuxProber{target: target, timeout: timeout, passive: opts.Passive}, target, nil
}

// Sweep broadcasts one ARP request per address of the range, then collects
// replies until the timeout. Passive sweeps only listen.
func (s *LinuxProber) Sweep(ctx context.Context) ([]DiscoveredHost, error) {
	c, err := arp.Dial(s.target.iface)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	if !s.passive {
		for _, ip := range rangeAddrs(s.target.rng, s.target.selfIP) {
			_ = c.Request(ip)
		}
	}

	var hosts []DiscoveredHost
	for {
		if ctx.Err() != nil {
			return hosts, nil
		}

		pkt, _, err := c.Read()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return hosts, nil
			}
			if !time.Now().Before(deadline) {
				return hosts, nil
			}
			continue
		}

		if !s.passive && pkt.Operation != arp.OperationReply {
			continue
		}
		if s.target.accept(pkt.SenderIP) {
			hosts = addHost(pkt.SenderIP, pkt.SenderHardwareAddr, hosts)
		}
	}
}
