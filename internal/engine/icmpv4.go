package engine

import (
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// buildICMPv4EchoReply builds an EchoReply (type 0, code 0) with the
// payload copied verbatim from the request and the checksum
// recomputed over the whole message. golang.org/x/net/icmp computes
// the RFC 1071 one's-complement checksum for us when psh is nil (no
// pseudo-header for ICMPv4).
func buildICMPv4EchoReply(req *icmp.Echo) ([]byte, error) {
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEchoReply,
		Code: 0,
		Body: &icmp.Echo{
			ID:   req.ID,
			Seq:  req.Seq,
			Data: req.Data,
		},
	}
	return msg.Marshal(nil)
}

// buildICMPv4TimeExceeded builds a TimeExceeded message (type 11, code
// 0): four reserved zero bytes followed by the entire original
// datagram quoted verbatim.
func buildICMPv4TimeExceeded(original []byte) ([]byte, error) {
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeTimeExceeded,
		Code: 0, // TTL exceeded in transit
		Body: &icmp.TimeExceeded{
			Data: original,
		},
	}
	return msg.Marshal(nil)
}

// icmpDestUnreachCodePortV4 is the ICMP code ("port unreachable") this
// system uses for IPv4 destination-unreachable messages.
const icmpDestUnreachCodePortV4 = 3

// buildICMPv4DestUnreachable builds a DestinationUnreachable message
// (type 3, code 3): four reserved zero bytes followed by the original
// datagram quoted verbatim.
func buildICMPv4DestUnreachable(original []byte) ([]byte, error) {
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeDestinationUnreachable,
		Code: icmpDestUnreachCodePortV4,
		Body: &icmp.DstUnreach{Data: original},
	}
	return msg.Marshal(nil)
}
