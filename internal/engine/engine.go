// Package engine is the packet engine: it demultiplexes raw IPv4/IPv6
// datagrams read from a TUN device, decides whether a given hop should be
// answered with a forged TimeExceeded from a synthetic address or as the
// real destination, and builds the checksum-correct IPv4/IPv6 and
// ICMP/ICMPv6 reply packets.
//
// Every exported entry point here is synchronous; nothing in this
// package blocks or retains state across calls. A reply takes more than
// one allocation: the ICMP message is marshaled into its own buffer and
// then copied behind a freshly built IP header.
package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/ftsell/viptraceroute/internal/netaddr"
)

// Config is the read-only, per-process configuration the packet engine
// consults on every datagram. It is safe to share across goroutines.
type Config struct {
	// NHosts is the virtual host count configured for every network.
	NHosts int
	// Log receives per-packet diagnostics. It must already carry
	// whatever static fields (e.g. the owning interface name) the
	// caller wants attached to every line.
	Log *logrus.Entry
}

// prefixFor looks up the prefix length for a family under this
// configuration's host count. Startup validation only covers the
// families that were actually configured, so a packet of the other
// family can still arrive with an NHosts that doesn't fit its width;
// such packets are dropped by the handlers.
func (c Config) prefixFor(family netaddr.Family) (int, error) {
	return netaddr.PrefixFor(c.NHosts, family)
}

// Handle classifies buf by the IP version nibble in its first byte and
// dispatches to the matching handler. It returns the bytes of a reply
// to write back to the same interface, or nil if no reply should be
// sent.
func Handle(cfg Config, buf []byte) []byte {
	if len(buf) == 0 {
		cfg.Log.Debug("dropping zero-length read")
		return nil
	}

	version := buf[0] >> 4
	switch version {
	case 4:
		return handleIPv4(cfg, buf)
	case 6:
		return handleIPv6(cfg, buf)
	default:
		cfg.Log.WithField("version_nibble", version).Debug("dropping packet with unknown IP version")
		return nil
	}
}
