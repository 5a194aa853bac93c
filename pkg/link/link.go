// Package link reports whether the device has a usable network link.
//
// The uplink client consults a Link at the start of every attempt and
// gives up with NO_LINK when it reports false. The answer is never cached.
package link

import (
	"log/slog"
	"net"
)

// Link reports the current link-layer state.
type Link interface {
	// IsConnected returns true when the device has an IP-capable link.
	IsConnected() bool
}

// Func adapts a plain function to the Link interface.
type Func func() bool

// IsConnected calls f.
func (f Func) IsConnected() bool { return f() }

// Always is a Link that is always connected.
var Always Link = Func(func() bool { return true })

// InterfaceLink inspects the host network interfaces.
type InterfaceLink struct {
	// Name restricts the check to a single interface (e.g. "wlan0").
	// Empty means any non-loopback interface.
	Name string

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger

	// interfaces is replaced in tests.
	interfaces func() ([]net.Interface, error)
	addrs      func(net.Interface) ([]net.Addr, error)
}

// NewInterfaceLink returns a Link backed by net.Interfaces.
func NewInterfaceLink(name string, logger *slog.Logger) *InterfaceLink {
	return &InterfaceLink{Name: name, Logger: logger}
}

// IsConnected returns true when a matching interface is up and carries
// at least one global or link-local unicast address.
func (l *InterfaceLink) IsConnected() bool {
	list := l.interfaces
	if list == nil {
		list = net.Interfaces
	}
	addrsOf := l.addrs
	if addrsOf == nil {
		addrsOf = func(iface net.Interface) ([]net.Addr, error) { return iface.Addrs() }
	}

	ifaces, err := list()
	if err != nil {
		l.debugLog("link: interface listing failed", "error", err)
		return false
	}

	for _, iface := range ifaces {
		if l.Name != "" && iface.Name != l.Name {
			continue
		}
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := addrsOf(iface)
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if hasUnicast(a) {
				return true
			}
		}
	}

	l.debugLog("link: no usable interface", "name", l.Name)
	return false
}

func hasUnicast(a net.Addr) bool {
	var ip net.IP
	switch v := a.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	default:
		return false
	}
	return ip.IsGlobalUnicast() || ip.IsLinkLocalUnicast()
}

func (l *InterfaceLink) debugLog(msg string, args ...any) {
	if l.Logger != nil {
		l.Logger.Debug(msg, args...)
	}
}

var (
	_ Link = Func(nil)
	_ Link = (*InterfaceLink)(nil)
)
