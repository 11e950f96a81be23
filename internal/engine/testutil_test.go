package engine

import (
	"encoding/binary"
	"net"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.TraceLevel)
	l.SetOutput(discardWriter{})
	return logrus.NewEntry(l)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// rawIPv4 builds an IPv4 datagram (no regard for header checksum
// correctness on the request side, which this system never validates).
func rawIPv4(ttl uint8, proto uint8, src, dst net.IP, payload []byte) []byte {
	total := ipv4HeaderLen + len(payload)
	out := make([]byte, total)
	out[0] = 0x45
	binary.BigEndian.PutUint16(out[2:4], uint16(total))
	out[8] = ttl
	out[9] = proto
	copy(out[12:16], src.To4())
	copy(out[16:20], dst.To4())
	copy(out[20:], payload)
	return out
}

func rawIPv4ICMPEcho(ttl uint8, src, dst net.IP, id, seq int, data []byte) []byte {
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: data},
	}
	b, err := msg.Marshal(nil)
	if err != nil {
		panic(err)
	}
	return rawIPv4(ttl, 1, src, dst, b)
}

func rawIPv6(hopLimit uint8, nextHeader uint8, src, dst net.IP, payload []byte) []byte {
	total := ipv6HeaderLen + len(payload)
	out := make([]byte, total)
	out[0] = 0x60
	binary.BigEndian.PutUint16(out[4:6], uint16(len(payload)))
	out[6] = nextHeader
	out[7] = hopLimit
	copy(out[8:24], src.To16())
	copy(out[24:40], dst.To16())
	copy(out[40:], payload)
	return out
}

func rawIPv6ICMPEcho(hopLimit uint8, src, dst net.IP, id, seq int, data []byte) []byte {
	msg := &icmp.Message{
		Type: ipv6.ICMPTypeEchoRequest,
		Code: 0,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: data},
	}
	b, err := msg.Marshal(icmp.IPv6PseudoHeader(src, dst))
	if err != nil {
		panic(err)
	}
	return rawIPv6(hopLimit, nextHeaderICMPv6, src, dst, b)
}
