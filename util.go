package main

import (
	"fmt"
	"io"
	"net"
	"os"
)

func checkPrivileges() {
	// ARP injection and capture need root or CAP_NET_RAW
	if os.Geteuid() != 0 {
		fmt.Fprintln(os.Stderr, "⚠️  warning: not running as root, results may be incomplete")
	}
}

// printHosts writes the device table, leaving out rows named ignoreName.
func printHosts(w io.Writer, hosts []Host, ignoreName string) {
	if len(hosts) == 0 {
		fmt.Fprintln(w, "No devices found on the network.")
		return
	}

	fmt.Fprintln(w, "Devices found on the local network:")
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "%-20s %-16s %-18s %-12s %s\n", "Device Name", "IP Address", "MAC Address", "Vendor", "Hostname")
	fmt.Fprintln(w, separator)
	for _, h := range hosts {
		if ignoreName != "" && h.Name == ignoreName {
			continue
		}
		fmt.Fprintf(w, "%-20s %-16s %-18s %-12s %s\n", h.Name, h.IP, h.MAC, h.Vendor, h.Hostname)
	}
}

func getInterfaceByName(name string) (*net.Interface, *net.IPNet, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("%w: empty interface name", ErrNoUsableInterface)
	}

	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, nil, err
	}

	ipnet, err := firstIPv4Net(iface)
	if err != nil {
		return nil, nil, err
	}

	return iface, ipnet, nil
}

func getDefaultInterface() (*net.Interface, *net.IPNet, error) {
	ifaces, _ := net.Interfaces()

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		ipnet, err := firstIPv4Net(&iface)
		if err == nil {
			return &iface, ipnet, nil
		}
	}
	return nil, nil, ErrNoUsableInterface
}

func firstIPv4Net(iface *net.Interface) (*net.IPNet, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, err
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil {
			return ipnet, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoIPv4, iface.Name)
}
