package engine

import (
	"encoding/binary"
	"errors"
	"net"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv6"

	"github.com/ftsell/viptraceroute/internal/netaddr"
)

const ipv6HeaderLen = 40

const (
	nextHeaderICMPv6 = 58
	nextHeaderTCP    = 6
	nextHeaderUDP    = 17
)

var (
	errIPv6Short      = errors.New("ipv6: buffer shorter than fixed header")
	errIPv6BadVersion = errors.New("ipv6: version field is not 6")
	errIPv6Truncated  = errors.New("ipv6: payload length exceeds buffer")
)

// datagramV6 is the parsed subset of an IPv6 datagram the packet
// engine needs. Unlike IPv4, this system does not walk the extension
// header chain; NextHeader is read directly from the fixed header.
type datagramV6 struct {
	HopLimit    uint8
	NextHeader  uint8
	Source      net.IP
	Destination net.IP
	Raw         []byte
	Payload     []byte
}

func parseIPv6(buf []byte) (*datagramV6, error) {
	if len(buf) < ipv6HeaderLen {
		return nil, errIPv6Short
	}
	if buf[0]>>4 != 6 {
		return nil, errIPv6BadVersion
	}
	payloadLen := int(binary.BigEndian.Uint16(buf[4:6]))
	total := ipv6HeaderLen + payloadLen
	if total > len(buf) {
		return nil, errIPv6Truncated
	}

	d := &datagramV6{
		HopLimit:    buf[7],
		NextHeader:  buf[6],
		Source:      net.IP(append(net.IP(nil), buf[8:24]...)),
		Destination: net.IP(append(net.IP(nil), buf[24:40]...)),
		Raw:         buf[:total],
		Payload:     buf[ipv6HeaderLen:total],
	}
	return d, nil
}

// handleIPv6 applies the hop-limit policy and dispatches an arrived
// datagram to its next-header handler.
func handleIPv6(cfg Config, buf []byte) []byte {
	d, err := parseIPv6(buf)
	if err != nil {
		cfg.Log.WithError(err).Debug("dropping unparseable ipv6 datagram")
		return nil
	}

	prefix, err := cfg.prefixFor(netaddr.IPv6)
	if err != nil {
		cfg.Log.WithError(err).Debug("dropping ipv6 datagram, host count does not fit this address family")
		return nil
	}
	candidate := netaddr.NthAddress(uint64(d.HopLimit), prefix, d.Destination)
	cfg.Log.WithFields(map[string]interface{}{
		"n":       d.HopLimit,
		"netmask": netaddr.NetmaskAddress(prefix, netaddr.IPv6).String(),
		"network": d.Destination.Mask(netaddr.Mask(prefix, netaddr.IPv6)).String(),
		"address": candidate.String(),
	}).Trace("computed virtual hop address")

	if int(d.HopLimit) < cfg.NHosts && !candidate.Equal(d.Destination) {
		cfg.Log.WithFields(logFieldsV6(d, candidate)).Debug("hop limit exceeded in virtual path, sending time exceeded")
		payload, err := buildICMPv6TimeExceeded(d.Raw, candidate, d.Source)
		if err != nil {
			cfg.Log.WithError(err).Warn("failed to build icmpv6 time exceeded")
			return nil
		}
		return frameIPv6Reply(cfg.Log, d, candidate, payload, ipv6FreshHopLimit)
	}

	switch d.NextHeader {
	case nextHeaderICMPv6:
		return handleIPv6ICMP(cfg, d)
	case nextHeaderUDP, nextHeaderTCP:
		payload, err := buildICMPv6DestUnreachable(d.Raw, d.Destination, d.Source)
		if err != nil {
			cfg.Log.WithError(err).Warn("failed to build icmpv6 destination unreachable")
			return nil
		}
		return frameIPv6Reply(cfg.Log, d, d.Destination, payload, 0)
	default:
		cfg.Log.WithField("next_header", d.NextHeader).Debug("ipv6 packet arrived with unhandled next header")
		return nil
	}
}

func handleIPv6ICMP(cfg Config, d *datagramV6) []byte {
	msg, err := icmp.ParseMessage(nextHeaderICMPv6, d.Payload)
	if err != nil {
		cfg.Log.WithError(err).Debug("dropping unparseable icmpv6 payload")
		return nil
	}

	if msg.Type != ipv6.ICMPTypeEchoRequest || msg.Code != 0 {
		cfg.Log.WithFields(map[string]interface{}{"icmp_type": msg.Type, "icmp_code": msg.Code}).Debug("unhandled icmpv6 type")
		return nil
	}

	echo, ok := msg.Body.(*icmp.Echo)
	if !ok {
		cfg.Log.Debug("icmpv6 echo request body had unexpected shape")
		return nil
	}

	// The reply's own source/destination (destination answering as
	// itself, back to the original source) form the pseudo-header this
	// echo reply's checksum is computed over.
	reply, err := buildICMPv6EchoReply(echo, d.Destination, d.Source)
	if err != nil {
		cfg.Log.WithError(err).Warn("failed to build icmpv6 echo reply")
		return nil
	}
	return frameIPv6Reply(cfg.Log, d, d.Destination, reply, 0)
}

func logFieldsV6(d *datagramV6, candidate net.IP) map[string]interface{} {
	return map[string]interface{}{
		"src":       d.Source.String(),
		"dst":       d.Destination.String(),
		"hop_limit": d.HopLimit,
		"candidate": candidate.String(),
	}
}
