package instance

import (
	"fmt"
	"net"
	"net/netip"
	"regexp"
)

// Canonical dnsmasq MAC form: six lowercase colon-separated octets.
var macRegex = regexp.MustCompile(`^([0-9a-f]{2}:){5}[0-9a-f]{2}$`)

// ParseMAC parses a MAC address in the canonical lowercase colon-separated
// 6-octet form used as registry keys. Other textual MAC forms are rejected;
// dnsmasq and netlink both produce this one.
func ParseMAC(s string) (net.HardwareAddr, error) {
	if !macRegex.MatchString(s) {
		return nil, fmt.Errorf("invalid MAC address: %q", s)
	}
	hw, err := net.ParseMAC(s)
	if err != nil {
		return nil, fmt.Errorf("invalid MAC address %q: %w", s, err)
	}
	return hw, nil
}

// LinkLocal derives the EUI-64 IPv6 link-local address from a 48-bit MAC
// following RFC 4291 Appendix A: insert ff:fe between OUI and NIC, flip the
// universal/local bit, prepend fe80::/64.
func LinkLocal(mac net.HardwareAddr) netip.Addr {
	var b [16]byte
	b[0] = 0xfe
	b[1] = 0x80
	b[8] = mac[0] ^ 0x02
	b[9] = mac[1]
	b[10] = mac[2]
	b[11] = 0xff
	b[12] = 0xfe
	b[13] = mac[3]
	b[14] = mac[4]
	b[15] = mac[5]
	return netip.AddrFrom16(b)
}
