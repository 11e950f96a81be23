package engine

import (
	"encoding/binary"
	"net"

	"github.com/sirupsen/logrus"
)

// ipv6FreshHopLimit is the hop limit this system stamps on a
// TimeExceeded reply's outer header, rather than decrementing the
// request's. TimeExceeded replies must escape the virtual subnet to
// reach the prober, so a fresh, generous value is used instead of
// request.hop_limit - 1, which by construction is always small when
// this code path fires.
const ipv6FreshHopLimit = 64

// frameIPv6Reply wraps icmpBytes in a fresh IPv6 header addressed back
// to the original sender, sourced from src. hopLimit, if non-zero,
// overrides the default of request.HopLimit-1 (used for TimeExceeded
// replies via ipv6FreshHopLimit); pass 0 to fall back to
// request.HopLimit-1 for ordinary echo/dest-unreachable replies
// answered as the real destination. A fallback that would underflow
// to hop limit 0 drops the reply, like the IPv4 framer.
func frameIPv6Reply(log *logrus.Entry, request *datagramV6, src net.IP, icmpBytes []byte, hopLimit uint8) []byte {
	if hopLimit == 0 {
		if request.HopLimit <= 1 {
			log.WithField("hop_limit", request.HopLimit).Debug("dropping reply, decremented hop limit would underflow")
			return nil
		}
		hopLimit = request.HopLimit - 1
	}

	total := ipv6HeaderLen + len(icmpBytes)
	out := make([]byte, total)

	out[0] = 0x60 // version 6, traffic class 0 (high nibble), flow label continues below
	// out[0:4] traffic class and flow label stay 0
	binary.BigEndian.PutUint16(out[4:6], uint16(len(icmpBytes)))
	out[6] = nextHeaderICMPv6
	out[7] = hopLimit
	copy(out[8:24], src.To16())
	copy(out[24:40], request.Source.To16())
	copy(out[40:], icmpBytes)

	return out
}
