package generate

import (
	"sort"
	"strings"

	"grimm.is/instanced/internal/instance"
)

// Short type keys for set names. nftables identifiers cannot carry hyphens,
// so sets keep these instead of the long hosts-file labels.
var setTypes = []struct {
	key     string
	nftType string
}{
	{"v4", "ipv4_addr"},
	{"v6", "ipv6_addr"}, // global unicast + unique local combined
	{"g6", "ipv6_addr"},
	{"u6", "ipv6_addr"},
	{"l6", "ipv6_addr"},
}

type addressGroup map[string][]string

func newAddressGroup() addressGroup {
	g := make(addressGroup, len(setTypes))
	for _, t := range setTypes {
		g[t.key] = nil
	}
	return g
}

func (g addressGroup) collect(rec *instance.Record) {
	if rec.IPv4 != "" {
		g["v4"] = append(g["v4"], rec.IPv4)
	}
	if rec.IPv6Global != "" {
		g["v6"] = append(g["v6"], rec.IPv6Global)
		g["g6"] = append(g["g6"], rec.IPv6Global)
	}
	if rec.IPv6UniqueLocal != "" {
		g["v6"] = append(g["v6"], rec.IPv6UniqueLocal)
		g["u6"] = append(g["u6"], rec.IPv6UniqueLocal)
	}
	if rec.IPv6LinkLocal != "" {
		g["l6"] = append(g["l6"], rec.IPv6LinkLocal)
	}
}

// buildSets emits the "all" address sets plus one group of sets per
// configured hostname. A configured hostname with no record still gets its
// sets, empty, so firewall rules referencing them by name keep loading.
func buildSets(reg instance.Registry, hostnames []string) (string, int) {
	all := newAddressGroup()
	byName := make(map[string]addressGroup, len(hostnames))
	for _, name := range hostnames {
		byName[name] = newAddressGroup()
	}

	for _, mac := range sortedMACs(reg) {
		rec := reg[mac]
		all.collect(rec)
		if g, ok := byName[rec.Hostname]; ok {
			g.collect(rec)
		}
	}

	b := newScriptBuilder()
	count := 0
	emit := func(prefix string, group addressGroup) {
		for _, t := range setTypes {
			name := prefix + t.key + ".instance"
			b.addf("# Use: @%s", name)
			b.addf("set %s {", name)
			b.addf("    type %s", t.nftType)
			addrs := append([]string(nil), group[t.key]...)
			sort.Strings(addrs)
			if len(addrs) > 0 { // empty "elements = { }" is not allowed
				b.addf("    elements = { %s }", strings.Join(addrs, ", "))
			}
			b.add("}")
			count++
		}
	}

	emit("all_", all)
	for _, name := range hostnames {
		// Hyphens are valid in hostnames but not in nftables identifiers.
		emit(strings.ReplaceAll(name, "-", "_")+".", byName[name])
	}
	return b.String(), count
}
