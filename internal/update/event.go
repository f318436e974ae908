package update

// Action is a dnsmasq dhcp-script lease action.
type Action string

const (
	ActionAdd Action = "add"
	ActionOld Action = "old"
	ActionDel Action = "del"
)

// Event is the closed set of registry mutations. Argument validation happens
// once at the command boundary; the engine only re-checks what it owns
// (address classification, record existence).
type Event interface {
	event()
}

// LeaseEvent is a dnsmasq lease notification. For IPv6 leases the MAC slot
// carries an identity-association id instead of a MAC, so the true MAC
// arrives out of band in SideChannelMAC (the DNSMASQ_MAC environment
// variable) and is used whenever the address classifies as IPv6.
type LeaseEvent struct {
	Action         Action
	MAC            string
	Address        string
	Hostname       string
	SideChannelMAC string
}

// InitializeEvent creates the registry with a self-registration for the
// named interface. It only takes effect while the registry file does not
// exist yet.
type InitializeEvent struct {
	Interface string
	Hostname  string
}

// RenameEvent changes the hostname of an existing instance, stealing the
// name from any other instance that holds it.
type RenameEvent struct {
	MAC      string
	Hostname string
}

// RemoveEvent deletes an instance.
type RemoveEvent struct {
	MAC string
}

func (LeaseEvent) event()      {}
func (InitializeEvent) event() {}
func (RenameEvent) event()     {}
func (RemoveEvent) event()     {}
