package generate

import (
	"sort"

	"grimm.is/instanced/internal/instance"
)

// Type-qualified subdomain labels for the hosts file.
const (
	labelIPv4            = "ipv4"
	labelIPv6            = "ipv6"
	labelIPv6Global      = "ipv6-global-unicast"
	labelIPv6UniqueLocal = "ipv6-unique-local"
	labelIPv6LinkLocal   = "ipv6-link-local"
)

// buildHosts emits one line per populated address field of every named
// record: the literal address followed by the resolvable names for it.
// Records without a hostname are skipped (nothing to resolve). Output is
// hostname-sorted so regeneration is diff-stable.
func buildHosts(reg instance.Registry, domain string) (string, int) {
	type named struct {
		mac string
		rec *instance.Record
	}
	records := make([]named, 0, len(reg))
	for mac, rec := range reg {
		if rec.Hostname != "" {
			records = append(records, named{mac, rec})
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].rec.Hostname != records[j].rec.Hostname {
			return records[i].rec.Hostname < records[j].rec.Hostname
		}
		return records[i].mac < records[j].mac
	})

	b := newScriptBuilder()
	count := 0
	for _, n := range records {
		name, rec := n.rec.Hostname, n.rec
		if rec.IPv4 != "" {
			b.addf("%s %s%s %s.%s%s", rec.IPv4, name, domain, name, labelIPv4, domain)
			count++
		}
		if rec.IPv6Global != "" {
			b.addf("%s %s%s %s.%s%s %s.%s%s", rec.IPv6Global,
				name, domain, name, labelIPv6, domain, name, labelIPv6Global, domain)
			count++
		}
		if rec.IPv6UniqueLocal != "" {
			b.addf("%s %s%s %s.%s%s %s.%s%s", rec.IPv6UniqueLocal,
				name, domain, name, labelIPv6, domain, name, labelIPv6UniqueLocal, domain)
			count++
		}
		if rec.IPv6LinkLocal != "" {
			// Link-local resolves only under its typed name, never under the
			// bare hostname: it must not be handed out unless asked for.
			b.addf("%s %s.%s%s", rec.IPv6LinkLocal, name, labelIPv6LinkLocal, domain)
			count++
		}
	}
	return b.String(), count
}
