package generate

import (
	"fmt"

	"grimm.is/instanced/internal/instance"
)

// buildChains emits one anti-spoofing chain per address family: traffic is
// accepted only when its link-layer source and network-layer source match a
// registered (MAC, address) pair, and everything else falls through to the
// final drop. The chains are meant to be jumped to from the bridge filter.
func buildChains(reg instance.Registry) (string, int) {
	b := newScriptBuilder()
	count := 0
	macs := sortedMACs(reg)

	comment := func(rec *instance.Record) string {
		if rec.Hostname == "" {
			return ""
		}
		return fmt.Sprintf(" comment %q", rec.Hostname)
	}

	b.add("# Use: ether type ip jump instances_guard_ip")
	b.add("chain instances_guard_ip {")
	for _, mac := range macs {
		rec := reg[mac]
		if rec.IPv4 == "" {
			continue
		}
		b.addf("    ether saddr %s ip saddr %s counter accept%s", mac, rec.IPv4, comment(rec))
		count++
	}
	b.add(`    counter drop comment "lockdown"`)
	count++
	b.add("}")

	ipv6Kinds := []instance.Kind{
		instance.KindIPv6Global,
		instance.KindIPv6UniqueLocal,
		instance.KindIPv6LinkLocal,
	}
	b.add("# Use: ether type ip6 jump instances_guard_ip6")
	b.add("chain instances_guard_ip6 {")
	for _, mac := range macs {
		rec := reg[mac]
		for _, kind := range ipv6Kinds {
			addr := rec.Addr(kind)
			if addr == "" {
				continue
			}
			b.addf("    ether saddr %s ip6 saddr %s counter accept%s", mac, addr, comment(rec))
			count++
		}
	}
	b.add(`    counter drop comment "lockdown"`)
	count++
	b.add("}")

	return b.String(), count
}
