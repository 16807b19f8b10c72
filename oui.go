package main

import (
	"net"
	"strings"
	"time"
)

var ouiDB = map[string]string{
	"3C22FB": "Apple",
	"843A4B": "Apple",
	"B827EB": "Raspberry",
	"DCA632": "Raspberry",
	"001A11": "Google",
	"F4F5D8": "Google",
	"44650D": "Amazon",
	"FCA667": "Amazon",
	"001788": "Philips",
	"50C7BF": "TP-Link",
	"001E58": "D-Link",
	"0017F2": "Apple",
}

func vendorFor(mac string) string {
	if len(mac) < 8 {
		return ""
	}
	prefix := strings.ToUpper(strings.ReplaceAll(mac[0:8], ":", ""))
	return ouiDB[prefix]
}

// enrichHosts turns records into display rows with vendor and, optionally,
// mDNS hostnames. Enrichment never changes the records themselves.
func enrichHosts(records []DeviceRecord, iface *net.Interface, mdns bool, timeout time.Duration) []Host {
	hosts := make([]Host, 0, len(records))
	for _, r := range records {
		hosts = append(hosts, Host{DeviceRecord: r, Vendor: vendorFor(r.MAC)})
	}

	if mdns && iface != nil {
		mergeMDNS(hosts, iface, timeout)
	}
	return hosts
}
