// Package instance defines the registry data model shared by the update and
// generate paths: one Record per MAC address, plus the address classification
// and EUI-64 derivation that keep the records consistent.
package instance

import "regexp"

// Record holds everything known about one instance. The JSON field names are
// the on-disk registry format and must not change.
type Record struct {
	Hostname        string `json:"hostname,omitempty"`
	IPv4            string `json:"ipv4,omitempty"`
	IPv6Global      string `json:"ipv6_global,omitempty"`
	IPv6UniqueLocal string `json:"ipv6_unique_local,omitempty"`
	IPv6LinkLocal   string `json:"ipv6_link_local,omitempty"`
}

// Registry maps canonical lowercase MAC addresses to records.
type Registry map[string]*Record

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

// ValidHostname reports whether s is an acceptable instance hostname.
func ValidHostname(s string) bool {
	return hostnameRegex.MatchString(s)
}

// Empty reports whether the record carries no hostname and no assigned
// addresses. The link-local address does not count: it is derived from the
// MAC and never assigned, so it cannot keep an otherwise dead record alive.
func (r *Record) Empty() bool {
	return r.Hostname == "" && r.IPv4 == "" && r.IPv6Global == "" && r.IPv6UniqueLocal == ""
}

// Equal compares all fields.
func (r *Record) Equal(other *Record) bool {
	if other == nil {
		return false
	}
	return *r == *other
}

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	return &c
}

// Addr returns the address stored for the given kind.
func (r *Record) Addr(kind Kind) string {
	switch kind {
	case KindIPv4:
		return r.IPv4
	case KindIPv6Global:
		return r.IPv6Global
	case KindIPv6UniqueLocal:
		return r.IPv6UniqueLocal
	case KindIPv6LinkLocal:
		return r.IPv6LinkLocal
	}
	return ""
}

// SetAddr stores an address under the given kind.
func (r *Record) SetAddr(kind Kind, addr string) {
	switch kind {
	case KindIPv4:
		r.IPv4 = addr
	case KindIPv6Global:
		r.IPv6Global = addr
	case KindIPv6UniqueLocal:
		r.IPv6UniqueLocal = addr
	case KindIPv6LinkLocal:
		r.IPv6LinkLocal = addr
	}
}

// ClearAddr removes the address stored under the given kind.
func (r *Record) ClearAddr(kind Kind) {
	r.SetAddr(kind, "")
}

// FindHostname returns the MAC of the record holding the given hostname, or
// "" if no record does. Hostnames are unique across the registry, so the
// first match is the only one.
func (reg Registry) FindHostname(hostname string) string {
	if hostname == "" {
		return ""
	}
	for mac, rec := range reg {
		if rec.Hostname == hostname {
			return mac
		}
	}
	return ""
}
