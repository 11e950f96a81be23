package engine

import (
	"encoding/binary"
	"net"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"
)

// ipv4Identification is the fixed sentinel this system uses for the IP
// identification field on every reply it sends. Any value is
// acceptable because Don't-Fragment is always set and no reassembly is
// ever expected.
const ipv4Identification = 42

// frameIPv4Reply wraps icmpBytes in a fresh, checksum-correct IPv4
// header addressed back to the original sender, sourced from src. If
// the request's TTL is already 0 or 1, the decremented reply TTL would
// underflow to 0 or below, so such a reply is dropped rather than
// emitted with an invalid TTL.
func frameIPv4Reply(log *logrus.Entry, request *datagramV4, src net.IP, icmpBytes []byte) []byte {
	if request.TTL <= 1 {
		log.WithField("ttl", request.TTL).Debug("dropping reply, decremented ttl would underflow")
		return nil
	}

	h := &ipv4.Header{
		Version:  ipv4.Version,
		Len:      ipv4.HeaderLen, // no options
		TotalLen: ipv4.HeaderLen + len(icmpBytes),
		ID:       ipv4Identification,
		Flags:    ipv4.DontFragment,
		TTL:      int(request.TTL) - 1,
		Protocol: 1, // ICMP
		Src:      src,
		Dst:      request.Source,
	}
	out, err := h.Marshal()
	if err != nil {
		log.WithError(err).Warn("failed to marshal ipv4 reply header")
		return nil
	}
	// Marshal leaves the checksum to the sender; a TUN write hands the
	// kernel a finished datagram, so it is filled in here.
	binary.BigEndian.PutUint16(out[10:12], ipChecksum(out))
	return append(out, icmpBytes...)
}

// ipChecksum computes the RFC 1071 one's-complement checksum over an
// IPv4 header. IPv4 ICMP permits a 0x0000 result to be transmitted
// as-is (unlike ICMPv6, which must flip an all-zero sum to 0xFFFF).
func ipChecksum(header []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(header); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(header[i : i+2]))
	}
	if len(header)%2 == 1 {
		sum += uint32(header[len(header)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}
