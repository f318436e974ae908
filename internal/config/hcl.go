package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// fileConfig is the HCL schema of the optional config file:
//
//	base_path    = "/var/lib/misc/instances"
//	base_id      = "lab"
//	hosts_domain = ".instance.internal"
//	address_sets = ["host", "backup"]
//	lock_timeout = "10s"
type fileConfig struct {
	BasePath    string   `hcl:"base_path,optional"`
	BaseID      string   `hcl:"base_id,optional"`
	HostsDomain string   `hcl:"hosts_domain,optional"`
	AddressSets []string `hcl:"address_sets,optional"`
	LockTimeout string   `hcl:"lock_timeout,optional"`
}

func loadHCLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return fmt.Errorf("HCL parse error: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return fmt.Errorf("HCL decode error: %s", diags.Error())
	}

	if fc.BasePath != "" {
		cfg.BasePath = fc.BasePath
	}
	if fc.BaseID != "" {
		cfg.BaseID = fc.BaseID
	}
	if fc.HostsDomain != "" {
		cfg.HostsDomain = fc.HostsDomain
	}
	if fc.AddressSets != nil {
		cfg.AddressSets = fc.AddressSets
	}
	if fc.LockTimeout != "" {
		d, err := time.ParseDuration(fc.LockTimeout)
		if err != nil {
			return fmt.Errorf("invalid lock_timeout in %s: %w", path, err)
		}
		cfg.LockTimeout = d
	}
	return nil
}
