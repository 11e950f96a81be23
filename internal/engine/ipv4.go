package engine

import (
	"encoding/binary"
	"errors"
	"net"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/ftsell/viptraceroute/internal/netaddr"
)

const ipv4HeaderLen = 20

var (
	errIPv4Short      = errors.New("ipv4: buffer shorter than minimum header")
	errIPv4BadVersion = errors.New("ipv4: version field is not 4")
	errIPv4Truncated  = errors.New("ipv4: total length exceeds buffer")
)

// datagramV4 is the parsed subset of an IPv4 datagram the packet engine
// needs. It borrows its Payload slice from the original read buffer.
type datagramV4 struct {
	TTL         uint8
	Protocol    uint8
	Source      net.IP
	Destination net.IP
	Raw         []byte // the complete original datagram, header included
	Payload     []byte // bytes after the IPv4 header
}

func parseIPv4(buf []byte) (*datagramV4, error) {
	if len(buf) < ipv4HeaderLen {
		return nil, errIPv4Short
	}
	if buf[0]>>4 != 4 {
		return nil, errIPv4BadVersion
	}
	ihl := int(buf[0]&0x0f) * 4
	if ihl < ipv4HeaderLen || len(buf) < ihl {
		return nil, errIPv4Short
	}
	totalLen := int(binary.BigEndian.Uint16(buf[2:4]))
	if totalLen < ihl || totalLen > len(buf) {
		return nil, errIPv4Truncated
	}

	d := &datagramV4{
		TTL:         buf[8],
		Protocol:    buf[9],
		Source:      net.IP(append(net.IP(nil), buf[12:16]...)),
		Destination: net.IP(append(net.IP(nil), buf[16:20]...)),
		Raw:         buf[:totalLen],
		Payload:     buf[ihl:totalLen],
	}
	return d, nil
}

// handleIPv4 applies the TTL policy and dispatches an arrived datagram
// to its protocol handler.
func handleIPv4(cfg Config, buf []byte) []byte {
	d, err := parseIPv4(buf)
	if err != nil {
		cfg.Log.WithError(err).Debug("dropping unparseable ipv4 datagram")
		return nil
	}

	prefix, err := cfg.prefixFor(netaddr.IPv4)
	if err != nil {
		cfg.Log.WithError(err).Debug("dropping ipv4 datagram, host count does not fit this address family")
		return nil
	}
	candidate := netaddr.NthAddress(uint64(d.TTL), prefix, d.Destination)
	cfg.Log.WithFields(map[string]interface{}{
		"n":       d.TTL,
		"netmask": netaddr.NetmaskAddress(prefix, netaddr.IPv4).String(),
		"network": d.Destination.Mask(netaddr.Mask(prefix, netaddr.IPv4)).String(),
		"address": candidate.String(),
	}).Trace("computed virtual hop address")

	if int(d.TTL) < cfg.NHosts && !candidate.Equal(d.Destination) {
		cfg.Log.WithFields(logFieldsV4(d, candidate)).Debug("ttl exceeded in virtual path, sending time exceeded")
		payload, err := buildICMPv4TimeExceeded(d.Raw)
		if err != nil {
			cfg.Log.WithError(err).Warn("failed to build icmp time exceeded")
			return nil
		}
		return frameIPv4Reply(cfg.Log, d, candidate, payload)
	}

	switch d.Protocol {
	case 1: // ICMP
		return handleIPv4ICMP(cfg, d)
	default:
		cfg.Log.WithField("protocol", d.Protocol).Debug("ipv4 packet arrived with unhandled next protocol")
		return nil
	}
}

func handleIPv4ICMP(cfg Config, d *datagramV4) []byte {
	msg, err := icmp.ParseMessage(1, d.Payload)
	if err != nil {
		cfg.Log.WithError(err).Debug("dropping unparseable icmp payload")
		return nil
	}

	if msg.Type != ipv4.ICMPTypeEcho || msg.Code != 0 {
		cfg.Log.WithFields(map[string]interface{}{"icmp_type": msg.Type, "icmp_code": msg.Code}).Debug("unhandled icmp type")
		return nil
	}

	echo, ok := msg.Body.(*icmp.Echo)
	if !ok {
		cfg.Log.Debug("icmp echo request body had unexpected shape")
		return nil
	}

	reply, err := buildICMPv4EchoReply(echo)
	if err != nil {
		cfg.Log.WithError(err).Warn("failed to build icmp echo reply")
		return nil
	}
	return frameIPv4Reply(cfg.Log, d, d.Destination, reply)
}

func logFieldsV4(d *datagramV4, candidate net.IP) map[string]interface{} {
	return map[string]interface{}{
		"src":       d.Source.String(),
		"dst":       d.Destination.String(),
		"ttl":       d.TTL,
		"candidate": candidate.String(),
	}
}
