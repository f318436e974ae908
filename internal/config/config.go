// Package config resolves the run parameters for both entry points: storage
// paths, the hosts domain suffix, the address-set hostname list and the lock
// wait bound. Resolution order is built-in defaults, then an optional HCL
// file, then environment variables (the dnsmasq integration sets only the
// environment). The rest of the program receives the resolved struct and
// never reads the environment itself.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/miekg/dns"

	"grimm.is/instanced/internal/instance"
	"grimm.is/instanced/internal/logging"
)

const (
	// DefaultBasePath matches the dnsmasq lease database location.
	DefaultBasePath = "/var/lib/misc/instances"

	// DefaultHostsDomain is the suffix appended to instance hostnames.
	DefaultHostsDomain = ".instance.internal"

	// DefaultConfigPath is consulted when INSTANCED_CONFIG is unset.
	DefaultConfigPath = "/etc/instanced.hcl"

	// DefaultLockTimeout bounds the advisory lock wait. Lease handling runs
	// inside dnsmasq's script hook, so the wait must be finite.
	DefaultLockTimeout = 10 * time.Second
)

var (
	baseIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	domainRegex = regexp.MustCompile(`^[a-zA-Z0-9.-]*$`)
)

// Config holds the resolved run parameters.
type Config struct {
	BasePath    string
	BaseID      string
	HostsDomain string
	AddressSets []string
	LockTimeout time.Duration
}

// Paths are the files derived from the base path and id. Everything lives in
// one directory so the atomic rename in the store stays on one filesystem.
type Paths struct {
	Registry string
	Marker   string
	Lock     string
	Hosts    string
	Chains   string
	Sets     string
}

// Paths derives the file paths for this configuration.
func (c *Config) Paths() Paths {
	prefix := c.BasePath
	if c.BaseID != "" {
		prefix += "-" + c.BaseID
	}
	return Paths{
		Registry: prefix + ".json",
		Marker:   prefix + ".updated",
		Lock:     prefix + ".lock",
		Hosts:    prefix + ".hosts",
		Chains:   prefix + ".nftables_chains",
		Sets:     prefix + ".nftables_sets",
	}
}

// Load resolves the configuration from defaults, the optional HCL file and
// the environment.
func Load(logger *logging.Logger) (*Config, error) {
	cfg := &Config{
		BasePath:    DefaultBasePath,
		HostsDomain: DefaultHostsDomain,
		AddressSets: []string{"host"},
		LockTimeout: DefaultLockTimeout,
	}

	path := os.Getenv("INSTANCED_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := loadHCLFile(path, cfg); err != nil {
			return nil, err
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if v := os.Getenv("INSTANCES_BASE_PATH"); v != "" {
		cfg.BasePath = v
	}
	if v := os.Getenv("INSTANCES_BASE_ID"); v != "" {
		cfg.BaseID = v
	}
	if v := os.Getenv("INSTANCES_HOSTS_DOMAIN"); v != "" {
		cfg.HostsDomain = v
	}
	if v, ok := os.LookupEnv("INSTANCES_ADDRESS_SETS"); ok {
		cfg.AddressSets = splitList(v)
	}

	if err := cfg.validate(logger); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate(logger *logging.Logger) error {
	if c.BasePath == "" {
		return fmt.Errorf("instances base path cannot be empty")
	}
	if c.BaseID != "" && !baseIDRegex.MatchString(c.BaseID) {
		return fmt.Errorf("invalid instances base id: %q", c.BaseID)
	}

	if c.HostsDomain != "" {
		if !strings.HasPrefix(c.HostsDomain, ".") {
			c.HostsDomain = "." + c.HostsDomain
		}
		bare := strings.TrimPrefix(c.HostsDomain, ".")
		if _, ok := dns.IsDomainName(bare); !ok || !domainRegex.MatchString(bare) {
			return fmt.Errorf("invalid hosts domain: %q", c.HostsDomain)
		}
	}

	// Invalid address-set hostnames are skipped, not fatal: a typo in one set
	// name must not stop the firewall sets of the others from regenerating.
	valid := c.AddressSets[:0]
	for _, name := range c.AddressSets {
		if !instance.ValidHostname(name) {
			if logger != nil {
				logger.Warn("Ignoring invalid hostname for address set", "name", name)
			}
			continue
		}
		valid = append(valid, name)
	}
	c.AddressSets = valid

	if c.LockTimeout <= 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	return nil
}
