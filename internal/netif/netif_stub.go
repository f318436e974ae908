//go:build !linux
// +build !linux

package netif

import (
	"fmt"
	"net"
)

type stubSource struct{}

// System returns the platform MAC source. Only Linux is supported; the stub
// keeps non-Linux builds (development, tests) compiling.
func System() MACSource {
	return stubSource{}
}

func (stubSource) InterfaceMAC(name string) (net.HardwareAddr, error) {
	return nil, fmt.Errorf("interface MAC lookup for %s not supported on this platform", name)
}
