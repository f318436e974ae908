// Package cmd wires the two instanced entry points: the dnsmasq dhcp-script
// update path and the artifact processing path.
package cmd

import (
	"fmt"
	"os"
	"regexp"

	"grimm.is/instanced/internal/config"
	"grimm.is/instanced/internal/instance"
	"grimm.is/instanced/internal/logging"
	"grimm.is/instanced/internal/netif"
	"grimm.is/instanced/internal/store"
	"grimm.is/instanced/internal/update"
)

// Valid interface name: alphanumeric, dash, underscore, dot (VLANs), max 15 chars
var interfaceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,15}$`)

// RunUpdate handles one update invocation. args holds the raw positionals
// starting with the action token, exactly as dnsmasq passes them; flags are
// deliberately not parsed because dnsmasq actions and arguments may carry
// arbitrary text (the administrative actions use a -- prefix to stay clear
// of present and future dnsmasq action names).
func RunUpdate(args []string) error {
	logger := logging.WithComponent("update")

	ev, err := parseUpdateArgs(args, os.Getenv("DNSMASQ_MAC"))
	if err != nil {
		return err
	}
	if ev == nil {
		// Unknown dnsmasq action (tftp, arp-add, ...) - deliberately ignored.
		return nil
	}

	cfg, err := config.Load(logger)
	if err != nil {
		return err
	}
	paths := cfg.Paths()
	st := store.New(paths.Registry, paths.Lock, cfg.LockTimeout)
	marker := store.NewMarker(paths.Marker)

	engine := update.NewEngine(st, marker, netif.System(), logger)
	_, err = engine.Apply(ev)
	return err
}

// parseUpdateArgs turns raw positionals into an event, or nil for actions
// that are ignored on purpose. All argument validation happens here; the
// engine re-checks only what it owns.
func parseUpdateArgs(args []string, sideChannelMAC string) (update.Event, error) {
	action := args[0]
	switch action {
	case "add", "old", "del":
		// action, mac, address; no upper bound in case dnsmasq adds more.
		if len(args) < 3 {
			return nil, fmt.Errorf("wrong number of arguments for action %s, see help", action)
		}
		hostname := ""
		if len(args) > 3 {
			hostname = args[3]
		}
		if hostname != "" && !instance.ValidHostname(hostname) {
			return nil, fmt.Errorf("invalid hostname: %q", hostname)
		}
		// The MAC slot is validated by the engine once the address family is
		// known: for IPv6 leases it carries an identity-association id, not
		// a MAC, and the side channel takes over.
		return update.LeaseEvent{
			Action:         update.Action(action),
			MAC:            args[1],
			Address:        args[2],
			Hostname:       hostname,
			SideChannelMAC: sideChannelMAC,
		}, nil

	case "--initialize":
		if len(args) != 3 {
			return nil, fmt.Errorf("wrong number of arguments for action %s, see help", action)
		}
		iface, hostname := args[1], args[2]
		if !interfaceNameRegex.MatchString(iface) {
			return nil, fmt.Errorf("invalid interface name: %q", iface)
		}
		if !instance.ValidHostname(hostname) {
			return nil, fmt.Errorf("invalid hostname: %q", hostname)
		}
		return update.InitializeEvent{Interface: iface, Hostname: hostname}, nil

	case "--rename":
		if len(args) != 3 {
			return nil, fmt.Errorf("wrong number of arguments for action %s, see help", action)
		}
		mac, hostname := args[1], args[2]
		if _, err := instance.ParseMAC(mac); err != nil {
			return nil, err
		}
		if !instance.ValidHostname(hostname) {
			return nil, fmt.Errorf("invalid hostname: %q", hostname)
		}
		return update.RenameEvent{MAC: mac, Hostname: hostname}, nil

	case "--remove":
		if len(args) != 2 {
			return nil, fmt.Errorf("wrong number of arguments for action %s, see help", action)
		}
		if _, err := instance.ParseMAC(args[1]); err != nil {
			return nil, err
		}
		return update.RemoveEvent{MAC: args[1]}, nil

	case "--delete":
		fmt.Fprintln(os.Stderr, "Did you mean --remove? See help")
		return nil, nil

	default:
		return nil, nil
	}
}
