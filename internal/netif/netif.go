// Package netif looks up link-layer details of local network interfaces for
// the self-registration action.
package netif

import "net"

// MACSource resolves a network interface name to its MAC address.
type MACSource interface {
	InterfaceMAC(name string) (net.HardwareAddr, error)
}
