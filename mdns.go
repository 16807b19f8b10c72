package main

import (
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

var mdnsGroup = &net.UDPAddr{IP: net.ParseIP("224.0.0.251"), Port: 5353}

func mergeMDNS(hosts []Host, iface *net.Interface, timeout time.Duration) {
	nameByIP := mdnsNameByIP(iface, timeout)
	if len(nameByIP) == 0 {
		return
	}

	for i := range hosts {
		if hosts[i].Hostname != "" {
			continue
		}
		if n, ok := nameByIP[hosts[i].IP]; ok {
			hosts[i].Hostname = n
		}
	}
}

func mdnsNameByIP(iface *net.Interface, timeout time.Duration) map[string]string {
	out := map[string]string{}

	conn, err := net.ListenMulticastUDP("udp4", iface, mdnsGroup)
	if err != nil {
		return out
	}
	defer conn.Close()

	_ = conn.SetReadBuffer(1 << 20)

	// service enumeration makes responders announce their A records
	q := new(dns.Msg)
	q.SetQuestion(dns.Fqdn("_services._dns-sd._udp.local"), dns.TypePTR)

	b, err := q.Pack()
	if err != nil {
		return out
	}

	_, _ = conn.WriteToUDP(b, mdnsGroup)
	time.Sleep(50 * time.Millisecond)
	_, _ = conn.WriteToUDP(b, mdnsGroup)

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 65536)

	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}

		m := new(dns.Msg)
		if err := m.Unpack(buf[:n]); err != nil {
			continue
		}

		parseMDNSAnswers(m, out)
	}

	return out
}

// parseMDNSAnswers records the A/AAAA names of a response into out.
func parseMDNSAnswers(m *dns.Msg, out map[string]string) {
	for _, rr := range append(m.Answer, m.Extra...) {
		switch t := rr.(type) {
		case *dns.A:
			out[t.A.String()] = strings.TrimSuffix(t.Hdr.Name, ".")
		case *dns.AAAA:
			out[t.AAAA.String()] = strings.TrimSuffix(t.Hdr.Name, ".")
		}
	}
}
