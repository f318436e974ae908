package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordEmpty(t *testing.T) {
	assert.True(t, (&Record{}).Empty())
	// The derived link-local alone does not keep a record alive.
	assert.True(t, (&Record{IPv6LinkLocal: "fe80::1"}).Empty())
	assert.False(t, (&Record{Hostname: "web"}).Empty())
	assert.False(t, (&Record{IPv4: "10.0.0.1"}).Empty())
	assert.False(t, (&Record{IPv6Global: "2001:db8::1"}).Empty())
	assert.False(t, (&Record{IPv6UniqueLocal: "fd00::1"}).Empty())
}

func TestRecordCloneAndEqual(t *testing.T) {
	r := &Record{Hostname: "web", IPv4: "10.0.0.1", IPv6LinkLocal: "fe80::1"}
	c := r.Clone()
	assert.True(t, r.Equal(c))

	c.IPv4 = "10.0.0.2"
	assert.False(t, r.Equal(c))
	assert.Equal(t, "10.0.0.1", r.IPv4, "clone must not share storage")

	assert.False(t, r.Equal(nil))
}

func TestRecordAddrSlots(t *testing.T) {
	r := &Record{}
	for kind, addr := range map[Kind]string{
		KindIPv4:            "10.0.0.1",
		KindIPv6Global:      "2001:db8::1",
		KindIPv6UniqueLocal: "fd00::1",
		KindIPv6LinkLocal:   "fe80::1",
	} {
		r.SetAddr(kind, addr)
		assert.Equal(t, addr, r.Addr(kind))
		r.ClearAddr(kind)
		assert.Empty(t, r.Addr(kind))
	}
}

func TestFindHostname(t *testing.T) {
	reg := Registry{
		"02:00:00:00:00:01": {Hostname: "web"},
		"02:00:00:00:00:02": {IPv4: "10.0.0.2"},
	}
	assert.Equal(t, "02:00:00:00:00:01", reg.FindHostname("web"))
	assert.Empty(t, reg.FindHostname("db"))
	assert.Empty(t, reg.FindHostname(""), "empty hostname never matches")
}

func TestValidHostname(t *testing.T) {
	for _, ok := range []string{"web", "a", "web-1", "Backup-Host"} {
		assert.True(t, ValidHostname(ok), ok)
	}
	for _, bad := range []string{"", "1web", "-web", "web.lan", "web_1", "web 1"} {
		assert.False(t, ValidHostname(bad), bad)
	}
}
