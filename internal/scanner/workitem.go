package scanner

import (
	"net"
	"strconv"
)

// Target is a single (address, port) pair to probe.
type Target struct {
	Address string
	Port    int
}

// String renders the target as host:port, bracketing IPv6 literals.
func (t Target) String() string {
	return net.JoinHostPort(t.Address, strconv.Itoa(t.Port))
}

// Expand builds the full address × port cross-product, address-major.
// Duplicates in either list are kept and scanned independently.
func Expand(addresses []string, ports []int) []Target {
	targets := make([]Target, 0, len(addresses)*len(ports))
	for _, addr := range addresses {
		for _, p := range ports {
			targets = append(targets, Target{Address: addr, Port: p})
		}
	}
	return targets
}

// SubnetAddresses joins a subnet prefix such as "10.0.0." with each host
// suffix.
func SubnetAddresses(prefix string, suffixes []int) []string {
	addrs := make([]string, len(suffixes))
	for i, s := range suffixes {
		addrs[i] = prefix + strconv.Itoa(s)
	}
	return addrs
}
