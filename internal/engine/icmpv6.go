package engine

import (
	"net"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv6"
)

// icmpDestUnreachCodePortV6 is the ICMPv6 code this system uses for
// destination-unreachable replies. Kept as a named constant since it
// is semantically observable to the prober.
const icmpDestUnreachCodePortV6 = 4

// buildICMPv6EchoReply builds an EchoReply (type 129, code 0) with the
// payload copied verbatim and the checksum computed over the RFC 4443
// pseudo-header built from the reply's own source/destination.
func buildICMPv6EchoReply(req *icmp.Echo, replySrc, replyDst net.IP) ([]byte, error) {
	msg := &icmp.Message{
		Type: ipv6.ICMPTypeEchoReply,
		Code: 0,
		Body: &icmp.Echo{
			ID:   req.ID,
			Seq:  req.Seq,
			Data: req.Data,
		},
	}
	return msg.Marshal(icmp.IPv6PseudoHeader(replySrc, replyDst))
}

// buildICMPv6TimeExceeded builds a TimeExceeded message (type 3, code
// 0): four reserved zero bytes followed by the entire original IPv6
// datagram quoted verbatim.
func buildICMPv6TimeExceeded(original []byte, replySrc, replyDst net.IP) ([]byte, error) {
	msg := &icmp.Message{
		Type: ipv6.ICMPTypeTimeExceeded,
		Code: 0, // hop limit exceeded in transit
		Body: &icmp.TimeExceeded{
			Data: original,
		},
	}
	return msg.Marshal(icmp.IPv6PseudoHeader(replySrc, replyDst))
}

// buildICMPv6DestUnreachable builds a DestinationUnreachable message
// (type 1, code 4, "port unreachable" by this system's convention),
// quoting the original datagram.
func buildICMPv6DestUnreachable(original []byte, replySrc, replyDst net.IP) ([]byte, error) {
	msg := &icmp.Message{
		Type: ipv6.ICMPTypeDestinationUnreachable,
		Code: icmpDestUnreachCodePortV6,
		Body: &icmp.DstUnreach{
			Data: original,
		},
	}
	return msg.Marshal(icmp.IPv6PseudoHeader(replySrc, replyDst))
}
