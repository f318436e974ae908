package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv detaches the test from any ambient dnsmasq environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INSTANCED_CONFIG",
		"INSTANCES_BASE_PATH",
		"INSTANCES_BASE_ID",
		"INSTANCES_HOSTS_DOMAIN",
		"INSTANCES_ADDRESS_SETS",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBasePath, cfg.BasePath)
	assert.Empty(t, cfg.BaseID)
	assert.Equal(t, DefaultHostsDomain, cfg.HostsDomain)
	assert.Equal(t, []string{"host"}, cfg.AddressSets)
	assert.Equal(t, DefaultLockTimeout, cfg.LockTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("INSTANCES_BASE_PATH", "/tmp/instances")
	t.Setenv("INSTANCES_BASE_ID", "lan0")
	t.Setenv("INSTANCES_HOSTS_DOMAIN", ".example.lan")
	t.Setenv("INSTANCES_ADDRESS_SETS", "web, db")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/instances", cfg.BasePath)
	assert.Equal(t, "lan0", cfg.BaseID)
	assert.Equal(t, ".example.lan", cfg.HostsDomain)
	assert.Equal(t, []string{"web", "db"}, cfg.AddressSets)
}

func TestLoadEmptyAddressSetsEnv(t *testing.T) {
	clearEnv(t)
	// Set but empty means no per-hostname sets, not the default.
	t.Setenv("INSTANCES_ADDRESS_SETS", "")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.AddressSets)
}

func TestLoadHCLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "instanced.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
base_path    = "/srv/instances"
base_id      = "guest"
hosts_domain = ".guest.lan"
address_sets = ["host", "printer"]
lock_timeout = "30s"
`), 0o644))
	t.Setenv("INSTANCED_CONFIG", path)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "/srv/instances", cfg.BasePath)
	assert.Equal(t, "guest", cfg.BaseID)
	assert.Equal(t, ".guest.lan", cfg.HostsDomain)
	assert.Equal(t, []string{"host", "printer"}, cfg.AddressSets)
	assert.Equal(t, 30*time.Second, cfg.LockTimeout)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "instanced.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`base_path = "/srv/instances"`), 0o644))
	t.Setenv("INSTANCED_CONFIG", path)
	t.Setenv("INSTANCES_BASE_PATH", "/tmp/instances")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/instances", cfg.BasePath)
}

func TestLoadExplicitConfigMustExist(t *testing.T) {
	clearEnv(t)
	t.Setenv("INSTANCED_CONFIG", filepath.Join(t.TempDir(), "missing.hcl"))

	_, err := Load(nil)
	require.Error(t, err)
}

func TestLoadInvalidBaseID(t *testing.T) {
	clearEnv(t)
	t.Setenv("INSTANCES_BASE_ID", "../escape")

	_, err := Load(nil)
	require.Error(t, err)
}

func TestLoadDomainNormalization(t *testing.T) {
	clearEnv(t)
	t.Setenv("INSTANCES_HOSTS_DOMAIN", "example.lan")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ".example.lan", cfg.HostsDomain)
}

func TestLoadInvalidDomain(t *testing.T) {
	clearEnv(t)
	t.Setenv("INSTANCES_HOSTS_DOMAIN", ".bad domain!")

	_, err := Load(nil)
	require.Error(t, err)
}

func TestLoadSkipsInvalidAddressSetNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("INSTANCES_ADDRESS_SETS", "web,9bad,also_bad,db")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"web", "db"}, cfg.AddressSets)
}

func TestPaths(t *testing.T) {
	cfg := &Config{BasePath: "/var/lib/misc/instances"}
	p := cfg.Paths()
	assert.Equal(t, "/var/lib/misc/instances.json", p.Registry)
	assert.Equal(t, "/var/lib/misc/instances.updated", p.Marker)
	assert.Equal(t, "/var/lib/misc/instances.lock", p.Lock)
	assert.Equal(t, "/var/lib/misc/instances.hosts", p.Hosts)
	assert.Equal(t, "/var/lib/misc/instances.nftables_chains", p.Chains)
	assert.Equal(t, "/var/lib/misc/instances.nftables_sets", p.Sets)

	cfg.BaseID = "lan0"
	p = cfg.Paths()
	assert.Equal(t, "/var/lib/misc/instances-lan0.json", p.Registry)
	assert.Equal(t, "/var/lib/misc/instances-lan0.hosts", p.Hosts)
}
