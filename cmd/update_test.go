package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/instanced/internal/update"
)

func TestParseUpdateArgsLease(t *testing.T) {
	ev, err := parseUpdateArgs([]string{"add", "02:00:00:00:00:01", "192.168.1.10", "web"}, "")
	require.NoError(t, err)
	require.IsType(t, update.LeaseEvent{}, ev)
	lease := ev.(update.LeaseEvent)
	assert.Equal(t, update.ActionAdd, lease.Action)
	assert.Equal(t, "02:00:00:00:00:01", lease.MAC)
	assert.Equal(t, "192.168.1.10", lease.Address)
	assert.Equal(t, "web", lease.Hostname)
}

func TestParseUpdateArgsLeaseWithoutHostname(t *testing.T) {
	ev, err := parseUpdateArgs([]string{"old", "02:00:00:00:00:01", "192.168.1.10"}, "")
	require.NoError(t, err)
	lease := ev.(update.LeaseEvent)
	assert.Equal(t, update.ActionOld, lease.Action)
	assert.Empty(t, lease.Hostname)
}

func TestParseUpdateArgsSideChannel(t *testing.T) {
	// dnsmasq passes an IAID in the MAC slot for IPv6; the real MAC comes
	// from the environment and must survive parsing untouched.
	ev, err := parseUpdateArgs(
		[]string{"add", "00:01:02:03", "2001:db8::10", "web"},
		"02:00:00:00:00:01")
	require.NoError(t, err)
	lease := ev.(update.LeaseEvent)
	assert.Equal(t, "00:01:02:03", lease.MAC)
	assert.Equal(t, "02:00:00:00:00:01", lease.SideChannelMAC)
}

func TestParseUpdateArgsLeaseExtraArgsTolerated(t *testing.T) {
	ev, err := parseUpdateArgs(
		[]string{"del", "02:00:00:00:00:01", "192.168.1.10", "web", "extra"}, "")
	require.NoError(t, err)
	assert.IsType(t, update.LeaseEvent{}, ev)
}

func TestParseUpdateArgsInitialize(t *testing.T) {
	ev, err := parseUpdateArgs([]string{"--initialize", "br0", "router"}, "")
	require.NoError(t, err)
	require.IsType(t, update.InitializeEvent{}, ev)
	init := ev.(update.InitializeEvent)
	assert.Equal(t, "br0", init.Interface)
	assert.Equal(t, "router", init.Hostname)
}

func TestParseUpdateArgsRename(t *testing.T) {
	ev, err := parseUpdateArgs([]string{"--rename", "02:00:00:00:00:01", "new-name"}, "")
	require.NoError(t, err)
	assert.Equal(t, update.RenameEvent{MAC: "02:00:00:00:00:01", Hostname: "new-name"}, ev)
}

func TestParseUpdateArgsRemove(t *testing.T) {
	ev, err := parseUpdateArgs([]string{"--remove", "02:00:00:00:00:01"}, "")
	require.NoError(t, err)
	assert.Equal(t, update.RemoveEvent{MAC: "02:00:00:00:00:01"}, ev)
}

func TestParseUpdateArgsIgnoredActions(t *testing.T) {
	for _, args := range [][]string{
		{"tftp", "1234", "192.168.1.10", "/srv/tftp/file"},
		{"arp-add", "02:00:00:00:00:01", "192.168.1.10"},
		{"arp-del", "02:00:00:00:00:01", "192.168.1.10"},
		{"init"},
		{"--delete", "02:00:00:00:00:01"},
	} {
		ev, err := parseUpdateArgs(args, "")
		assert.NoError(t, err, args[0])
		assert.Nil(t, ev, args[0])
	}
}

func TestParseUpdateArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"lease missing address", []string{"add", "02:00:00:00:00:01"}},
		{"lease bad hostname", []string{"add", "02:00:00:00:00:01", "192.168.1.10", "9bad"}},
		{"lease underscore hostname", []string{"old", "02:00:00:00:00:01", "192.168.1.10", "bad_name"}},
		{"initialize arity", []string{"--initialize", "br0"}},
		{"initialize bad interface", []string{"--initialize", "way-too-long-interface0", "router"}},
		{"initialize bad hostname", []string{"--initialize", "br0", "-router"}},
		{"rename arity", []string{"--rename", "02:00:00:00:00:01"}},
		{"rename bad mac", []string{"--rename", "02-00-00-00-00-01", "web"}},
		{"rename bad hostname", []string{"--rename", "02:00:00:00:00:01", ""}},
		{"remove arity", []string{"--remove"}},
		{"remove bad mac", []string{"--remove", "02:00:00:00:00"}},
		{"remove uppercase mac", []string{"--remove", "02:00:00:00:00:0A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseUpdateArgs(tt.args, "")
			require.Error(t, err)
		})
	}
}
