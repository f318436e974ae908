// Package update applies lease events and administrative actions to the
// instance registry. Every application is one read-modify-write under the
// registry lock; only a changed registry is written back, and only a write
// sets the change marker, so replaying an identical event is a no-op on disk.
package update

import (
	"errors"
	"fmt"
	"net"

	"grimm.is/instanced/internal/instance"
	"grimm.is/instanced/internal/logging"
	"grimm.is/instanced/internal/netif"
	"grimm.is/instanced/internal/store"
)

// ErrUnknownInstance marks rename attempts against a MAC with no record.
var ErrUnknownInstance = errors.New("unknown instance")

// Fields an external event may assign. The link-local field is excluded: it
// is derived from the MAC, never assigned, so it cannot collide.
var assignableKinds = []instance.Kind{
	instance.KindIPv4,
	instance.KindIPv6Global,
	instance.KindIPv6UniqueLocal,
}

// Engine applies events to the registry.
type Engine struct {
	store  *store.Store
	marker *store.Marker
	macs   netif.MACSource
	logger *logging.Logger
}

// NewEngine creates an engine over the given store and marker.
func NewEngine(st *store.Store, marker *store.Marker, macs netif.MACSource, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		store:  st,
		marker: marker,
		macs:   macs,
		logger: logger,
	}
}

// Apply runs one event against the registry under the lock. It reports
// whether the registry changed on disk.
func (e *Engine) Apply(ev Event) (bool, error) {
	changed := false
	err := e.store.WithLock(func() error {
		var err error
		changed, err = e.apply(ev)
		return err
	})
	return changed, err
}

func (e *Engine) apply(ev Event) (bool, error) {
	switch ev := ev.(type) {
	case LeaseEvent:
		return e.applyLease(ev)
	case InitializeEvent:
		return e.applyInitialize(ev)
	case RenameEvent:
		return e.applyRename(ev)
	case RemoveEvent:
		return e.applyRemove(ev)
	default:
		return false, fmt.Errorf("unhandled event type %T", ev)
	}
}

// commit saves the registry and sets the change marker. The marker is set
// only after a successful write, so the processor can never observe
// "pending" without the data already being durable.
func (e *Engine) commit(reg instance.Registry) error {
	if err := e.store.Save(reg); err != nil {
		return err
	}
	return e.marker.Set()
}

func (e *Engine) applyLease(ev LeaseEvent) (bool, error) {
	kind, addr, err := instance.Classify(ev.Address)
	if err != nil {
		return false, err
	}
	if kind == instance.KindIPv6LinkLocal {
		return false, fmt.Errorf("link-local lease address %s is always derived, never assigned: %w",
			ev.Address, instance.ErrUnsupportedAddress)
	}

	mac := ev.MAC
	if kind.IsIPv6() {
		// The positional MAC slot is unreliable for IPv6.
		if ev.SideChannelMAC == "" {
			e.logger.Info("No client MAC for IPv6 lease, skipping update", "address", ev.Address)
			return false, nil
		}
		mac = ev.SideChannelMAC
	}
	hw, err := instance.ParseMAC(mac)
	if err != nil {
		return false, err
	}
	mac = hw.String()

	reg, err := e.store.Load()
	if err != nil {
		return false, err
	}

	var dirty bool
	switch ev.Action {
	case ActionDel:
		dirty = e.releaseAddress(reg, mac, kind)
	case ActionAdd, ActionOld:
		dirty = e.mergeLease(reg, mac, hw, kind, addr.String(), ev.Hostname)
	default:
		return false, fmt.Errorf("unknown lease action %q", ev.Action)
	}

	if !dirty {
		return false, nil
	}
	if err := e.commit(reg); err != nil {
		return false, err
	}
	e.logger.Info("Instance updated", "mac", mac, "address", addr.String(), "hostname", ev.Hostname)
	return true, nil
}

// mergeLease folds one add/old lease into the registry and reports whether
// anything changed.
func (e *Engine) mergeLease(reg instance.Registry, mac string, hw net.HardwareAddr, kind instance.Kind, addr, hostname string) bool {
	rec := reg[mac]
	created := rec == nil
	if created {
		rec = &instance.Record{}
		reg[mac] = rec
	}
	prior := rec.Clone()

	// Hostnames are sticky: set once, only when no other record holds the
	// name; later events carrying a different name never overwrite it. Only
	// the rename action changes an established hostname.
	if hostname != "" && rec.Hostname == "" {
		if holder := reg.FindHostname(hostname); holder == "" || holder == mac {
			rec.Hostname = hostname
		}
	}

	rec.SetAddr(kind, addr)
	rec.IPv6LinkLocal = instance.LinkLocal(hw).String()

	dirty := created || !rec.Equal(prior)

	// An address can only belong to one instance: clear the same literal
	// from the same field of every other record (the lease moved).
	for omac, other := range reg {
		if omac == mac {
			continue
		}
		for _, k := range assignableKinds {
			if v := other.Addr(k); v != "" && v == rec.Addr(k) {
				other.ClearAddr(k)
				dirty = true
			}
		}
		if other.Empty() {
			delete(reg, omac)
			dirty = true
		}
	}
	return dirty
}

// releaseAddress clears the address slot matching the classified type of a
// del event and drops the record once nothing assigned remains.
func (e *Engine) releaseAddress(reg instance.Registry, mac string, kind instance.Kind) bool {
	rec := reg[mac]
	if rec == nil {
		return false
	}
	dirty := false
	if rec.Addr(kind) != "" {
		rec.ClearAddr(kind)
		dirty = true
	}
	if rec.Empty() {
		delete(reg, mac)
		dirty = true
	}
	return dirty
}

func (e *Engine) applyInitialize(ev InitializeEvent) (bool, error) {
	exists, err := e.store.Exists()
	if err != nil {
		return false, err
	}
	if exists {
		e.logger.Info("Registry already exists, skipping initialization", "path", e.store.Path())
		return false, nil
	}

	hw, err := e.macs.InterfaceMAC(ev.Interface)
	if err != nil {
		return false, fmt.Errorf("resolve MAC for interface %s: %w", ev.Interface, err)
	}
	mac := hw.String()
	if _, err := instance.ParseMAC(mac); err != nil {
		return false, fmt.Errorf("interface %s: %w", ev.Interface, err)
	}

	reg := instance.Registry{
		mac: {
			Hostname:      ev.Hostname,
			IPv6LinkLocal: instance.LinkLocal(hw).String(),
		},
	}
	if err := e.commit(reg); err != nil {
		return false, err
	}
	e.logger.Info("Registry initialized", "mac", mac, "interface", ev.Interface, "hostname", ev.Hostname)
	return true, nil
}

func (e *Engine) applyRename(ev RenameEvent) (bool, error) {
	reg, err := e.store.Load()
	if err != nil {
		return false, err
	}
	rec := reg[ev.MAC]
	if rec == nil {
		return false, fmt.Errorf("%w: %s", ErrUnknownInstance, ev.MAC)
	}

	dirty := false
	if rec.Hostname != ev.Hostname {
		rec.Hostname = ev.Hostname
		dirty = true
	}

	// Uniqueness is enforced by stealing, not rejecting: the previous holder
	// loses the name, and is dropped entirely if that leaves it empty.
	for omac, other := range reg {
		if omac == ev.MAC || other.Hostname != ev.Hostname {
			continue
		}
		other.Hostname = ""
		dirty = true
		if other.Empty() {
			delete(reg, omac)
		}
	}

	if !dirty {
		return false, nil
	}
	if err := e.commit(reg); err != nil {
		return false, err
	}
	e.logger.Info("Instance renamed", "mac", ev.MAC, "hostname", ev.Hostname)
	return true, nil
}

func (e *Engine) applyRemove(ev RemoveEvent) (bool, error) {
	reg, err := e.store.Load()
	if err != nil {
		return false, err
	}
	if _, ok := reg[ev.MAC]; !ok {
		return false, nil
	}
	delete(reg, ev.MAC)
	if err := e.commit(reg); err != nil {
		return false, err
	}
	e.logger.Info("Instance removed", "mac", ev.MAC)
	return true, nil
}
