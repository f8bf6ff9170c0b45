package netutil

import (
	"fmt"
	"net/netip"
)

// maxHostBits caps CIDR expansion at 65536 addresses.
const maxHostBits = 16

// ExpandCIDR returns every host address in cidr. A bare IP is accepted and
// yields itself. When the prefix leaves more than one host bit the network
// address is skipped, and for IPv4 the broadcast address too.
func ExpandCIDR(cidr string) ([]string, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		addr, aerr := netip.ParseAddr(cidr)
		if aerr != nil {
			return nil, fmt.Errorf("invalid CIDR or IP: %q", cidr)
		}
		return []string{addr.String()}, nil
	}
	prefix = prefix.Masked()

	hostBits := prefix.Addr().BitLen() - prefix.Bits()
	if hostBits > maxHostBits {
		return nil, fmt.Errorf("CIDR %s is too large (max /%d)", cidr, prefix.Addr().BitLen()-maxHostBits)
	}

	addrs := make([]string, 0, 1<<hostBits)
	for a := prefix.Addr(); a.IsValid() && prefix.Contains(a); a = a.Next() {
		addrs = append(addrs, a.String())
	}
	if hostBits > 1 {
		// IPv6 has no broadcast address, only the subnet-router anycast.
		if prefix.Addr().Is4() {
			addrs = addrs[:len(addrs)-1]
		}
		addrs = addrs[1:]
	}
	return addrs, nil
}
