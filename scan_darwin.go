package main

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

type DarwinProber struct {
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

	return &DarwinProber{target: target, timeout: timeout, passive: opts.Passive}, target, nil
}

func (s *DarwinProber) Sweep(ctx context.Context) ([]DiscoveredHost, error) {
	handle, err := pcap.OpenLive(s.target.iface.Name, 65536, true, 100*time.Millisecond)
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	_ = handle.SetBPFFilter("arp")

	var (
		mu    sync.Mutex
		hosts []DiscoveredHost
	)

	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		src := gopacket.NewPacketSource(handle, handle.LinkType())
		packets := src.Packets()
		for {
			select {
			case <-stop:
				return
			case pkt, ok := <-packets:
				if !ok {
					return
				}
				arpLayer := pkt.Layer(layers.LayerTypeARP)
				if arpLayer == nil {
					continue
				}
				a := arpLayer.(*layers.ARP)
				if !s.passive && a.Operation != layers.ARPReply {
					continue
				}
				ip, ok := netip.AddrFromSlice(a.SourceProtAddress)
				if !ok || !s.target.accept(ip) {
					continue
				}
				mu.Lock()
				hosts = addHost(ip, net.HardwareAddr(a.SourceHwAddress), hosts)
				mu.Unlock()
			}
		}
	}()

	if !s.passive {
		for _, ip := range rangeAddrs(s.target.rng, s.target.selfIP) {
			_ = s.sendARPRequest(handle, ip)
		}
	}

	t := time.NewTimer(s.timeout)
	select {
	case <-ctx.Done():
		t.Stop()
	case <-t.C:
	}
	close(stop)
	<-finished

	mu.Lock()
	defer mu.Unlock()
	return hosts, nil
}

func (s *DarwinProber) sendARPRequest(handle *pcap.Handle, target netip.Addr) error {
	srcMAC := s.target.iface.HardwareAddr
	if len(srcMAC) != 6 {
		return errors.New("unexpected interface MAC length")
	}

	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}

	req := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(srcMAC),
		SourceProtAddress: s.target.selfIP.AsSlice(),
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    target.AsSlice(),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, req); err != nil {
		return err
	}

	return handle.WritePacketData(buf.Bytes())
}
