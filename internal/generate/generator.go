// Package generate compiles a registry snapshot into the three configuration
// artifacts: a hosts file for the DNS resolver, nftables anti-spoofing
// chains, and nftables address sets. Generation is deterministic over the
// snapshot, so regenerated artifacts are diff-stable.
package generate

import (
	"errors"
	"sort"

	"grimm.is/instanced/internal/config"
	"grimm.is/instanced/internal/instance"
	"grimm.is/instanced/internal/logging"
	"grimm.is/instanced/internal/store"
)

// ErrNoPendingUpdate is returned when no registry change is pending and the
// run was not forced. Callers map it to the dedicated "nothing to do" exit
// status.
var ErrNoPendingUpdate = errors.New("no pending update")

// Options controls one processing run.
type Options struct {
	// Force regenerates even when no update is pending.
	Force bool
	// Diff collects unified diffs against the previous artifacts.
	Diff bool
}

// Result reports what a processing run produced.
type Result struct {
	Instances int
	HostLines int
	Rules     int
	Sets      int
	// Diffs maps artifact path to a unified diff against its previous
	// content. Only populated with Options.Diff; unchanged artifacts are
	// omitted.
	Diffs map[string]string
}

// Generator turns registry snapshots into artifacts.
type Generator struct {
	store  *store.Store
	marker *store.Marker
	cfg    *config.Config
	logger *logging.Logger
}

// New creates a generator.
func New(st *store.Store, marker *store.Marker, cfg *config.Config, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{
		store:  st,
		marker: marker,
		cfg:    cfg,
		logger: logger,
	}
}

// Process runs one processing cycle. Clearing the marker and reading the
// registry happen under the same lock, so any update signaled before the
// marker was taken is visible in the snapshot, and any later update re-sets
// the marker for the next cycle.
func (g *Generator) Process(opts Options) (Result, error) {
	var res Result
	err := g.store.WithLock(func() error {
		pending, err := g.marker.TakeIfSet()
		if err != nil {
			return err
		}
		if !pending && !opts.Force {
			return ErrNoPendingUpdate
		}

		reg, err := g.store.Load()
		if err != nil {
			return err
		}
		res.Instances = len(reg)

		paths := g.cfg.Paths()

		hosts, hostLines := buildHosts(reg, g.cfg.HostsDomain)
		res.HostLines = hostLines

		chains, rules := buildChains(reg)
		res.Rules = rules

		sets, setCount := buildSets(reg, g.cfg.AddressSets)
		res.Sets = setCount

		artifacts := []struct {
			path    string
			content string
		}{
			{paths.Hosts, hosts},
			{paths.Chains, chains},
			{paths.Sets, sets},
		}
		if opts.Diff {
			res.Diffs = make(map[string]string)
		}
		for _, a := range artifacts {
			if opts.Diff {
				diff, err := diffAgainstFile(a.path, a.content)
				if err != nil {
					return err
				}
				if diff != "" {
					res.Diffs[a.path] = diff
				}
			}
			if err := store.WriteFileAtomic(a.path, []byte(a.content), 0o644); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	g.logger.Info("Processed registry",
		"instances", res.Instances,
		"host_addresses", res.HostLines,
		"nftables_rules", res.Rules,
		"nftables_sets", res.Sets)
	return res, nil
}

// sortedMACs returns the registry keys in a stable order.
func sortedMACs(reg instance.Registry) []string {
	macs := make([]string, 0, len(reg))
	for mac := range reg {
		macs = append(macs, mac)
	}
	sort.Strings(macs)
	return macs
}
