package main

import (
	"errors"
	"fmt"
	"os"

	"grimm.is/instanced/cmd"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		if err := cmd.RunProcess(os.Args[2:]); err != nil {
			if errors.Is(err, cmd.ErrNoPendingUpdate) {
				// Distinct status so schedulers can tell "nothing to do"
				// from an actual failure.
				os.Exit(10)
			}
			fmt.Fprintf(os.Stderr, "Process failed: %v\n", err)
			os.Exit(1)
		}

	case "version", "--version":
		fmt.Printf("instanced %s\n", version)

	case "help", "--help", "-h":
		printUsage()

	default:
		// Anything else is an update invocation: dnsmasq lease actions
		// (add/old/del and future ones) or the administrative --initialize,
		// --rename, --remove actions. dnsmasq passes raw positionals, so the
		// action token is taken as-is.
		if err := cmd.RunUpdate(os.Args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
			os.Exit(1)
		}
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `instanced - instance registry for dnsmasq leases

Usage:
  instanced <action> <mac> <address> [hostname] [extra...]
      dnsmasq dhcp-script entry point (actions: add, old, del; other
      actions are ignored). For IPv6 leases the MAC is taken from the
      DNSMASQ_MAC environment variable.

  instanced --initialize <interface> <hostname>
      Create the registry with a self-registration for the named
      interface. No-op if the registry file already exists.

  instanced --rename <mac> <hostname>
      Rename the instance identified by <mac>, stealing the hostname
      from any other instance that holds it.

  instanced --remove <mac>
      Remove the instance identified by <mac>.

  instanced process [-f|--force] [--diff]
      Regenerate hosts, nftables chain and nftables set files from the
      registry. Exits 10 when no update is pending (unless forced).

  instanced version | help

Configuration: optional HCL file (INSTANCED_CONFIG or /etc/instanced.hcl),
overridden by INSTANCES_BASE_PATH, INSTANCES_BASE_ID, INSTANCES_HOSTS_DOMAIN
and INSTANCES_ADDRESS_SETS environment variables.
`)
}
