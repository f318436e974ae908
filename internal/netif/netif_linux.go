//go:build linux
// +build linux

package netif

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

type netlinkSource struct{}

// System returns the platform MAC source, backed by netlink on Linux.
func System() MACSource {
	return netlinkSource{}
}

func (netlinkSource) InterfaceMAC(name string) (net.HardwareAddr, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return nil, fmt.Errorf("interface %s: %w", name, err)
	}
	hw := link.Attrs().HardwareAddr
	if len(hw) != 6 {
		return nil, fmt.Errorf("interface %s has no usable MAC address", name)
	}
	return hw, nil
}
