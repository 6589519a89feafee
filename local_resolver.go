package ddns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// InterfaceResolver constructs a resolver that returns the first IPv4 address reported by the named interface.
// If iface is empty then all interfaces are searched.
// Loopback addresses are always skipped.
//
// This is only useful on hosts that hold their public address directly, e.g. a PPPoE link.
func InterfaceResolver(iface string) Resolver {
	if iface == "" {
		return localResolver{}
	}
	return interfaceResolver{iface: iface}
}

type interfaceResolver struct {
	iface string
}

func (r interfaceResolver) Resolve(ctx context.Context) (string, error) {
	iface, err := net.InterfaceByName(r.iface)
	if err != nil {
		return "", fmt.Errorf("error getting interface %s by name: %w", r.iface, err)
	}
	a, err := iface.Addrs()
	if err != nil {
		return "", fmt.Errorf("error looking up addresses for interface %s: %w", r.iface, err)
	}
	addr, err := firstIPv4(a)
	if err != nil {
		return "", fmt.Errorf("interface %s: %w", r.iface, err)
	}
	return addr, nil
}

type localResolver struct{}

func (r localResolver) Resolve(ctx context.Context) (string, error) {
	adds, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("error getting addresses for interface: %w", err)
	}
	return firstIPv4(adds)
}

func firstIPv4(adds []net.Addr) (string, error) {
	// addr: ip+net:192.168.86.253/24
	// addr: ip+net:fe80::2cc9:801b:3551:9a43/64
	var parseErrors []error
	for _, addr := range adds {
		ip, err := netip.ParsePrefix(addr.String())
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("error parsing local ip %s: %s", addr.String(), err))
			continue
		}
		if ip.Addr().IsLoopback() || !ip.Addr().Is4() {
			continue
		}
		return ip.Addr().String(), nil
	}
	return "", errors.Join(append(parseErrors, ErrDiscoveryExhausted)...)
}
