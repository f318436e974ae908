package instance

import (
	"errors"
	"fmt"
	"net/netip"
)

// Kind classifies an address literal into the registry's address slots.
type Kind int

const (
	KindIPv4 Kind = iota
	KindIPv6Global
	KindIPv6UniqueLocal
	KindIPv6LinkLocal
)

// String returns the registry field name for the kind.
func (k Kind) String() string {
	switch k {
	case KindIPv4:
		return "ipv4"
	case KindIPv6Global:
		return "ipv6_global"
	case KindIPv6UniqueLocal:
		return "ipv6_unique_local"
	case KindIPv6LinkLocal:
		return "ipv6_link_local"
	}
	return "unknown"
}

// IsIPv6 reports whether the kind is one of the IPv6 slots.
func (k Kind) IsIPv6() bool {
	return k != KindIPv4
}

// ErrUnsupportedAddress marks syntactically valid addresses outside the
// supported scopes (multicast, loopback, site-local and so on).
var ErrUnsupportedAddress = errors.New("unsupported address")

var (
	globalUnicastPrefix = netip.MustParsePrefix("2000::/3")
	uniqueLocalPrefix   = netip.MustParsePrefix("fc00::/7")
	linkLocalPrefix     = netip.MustParsePrefix("fe80::/10")
)

// Classify parses an address literal and assigns it to a registry slot.
// IPv4-mapped IPv6 literals normalize to IPv4. IPv6 addresses outside
// 2000::/3, fc00::/7 and fe80::/10 are rejected with ErrUnsupportedAddress.
func Classify(literal string) (Kind, netip.Addr, error) {
	addr, err := netip.ParseAddr(literal)
	if err != nil {
		return 0, netip.Addr{}, fmt.Errorf("invalid IP address %q: %w", literal, err)
	}
	if addr.Is4() || addr.Is4In6() {
		return KindIPv4, addr.Unmap(), nil
	}
	switch {
	case globalUnicastPrefix.Contains(addr):
		return KindIPv6Global, addr, nil
	case uniqueLocalPrefix.Contains(addr):
		return KindIPv6UniqueLocal, addr, nil
	case linkLocalPrefix.Contains(addr):
		return KindIPv6LinkLocal, addr, nil
	}
	return 0, netip.Addr{}, fmt.Errorf("address %q outside supported scopes: %w", literal, ErrUnsupportedAddress)
}
