package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/icmp"
)

func TestBuildICMPv4EchoReplyRoundTripsPayload(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02}
	req := &icmp.Echo{ID: 42, Seq: 7, Data: payload}

	reply, err := buildICMPv4EchoReply(req)
	require.NoError(t, err)
	require.Equal(t, payload, reply[len(reply)-len(payload):])
	require.Equal(t, uint8(0), reply[0]) // EchoReply type
	require.Equal(t, uint8(0), reply[1]) // code
}

func TestBuildICMPv4EchoReplyIsIdempotent(t *testing.T) {
	req := &icmp.Echo{ID: 1, Seq: 2, Data: []byte("abc")}
	a, err := buildICMPv4EchoReply(req)
	require.NoError(t, err)
	b, err := buildICMPv4EchoReply(req)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestBuildICMPv4TimeExceededQuotesOriginal(t *testing.T) {
	original := []byte{0x45, 0x00, 0x00, 0x1c, 0, 0, 0, 0, 64, 1, 0, 0, 10, 0, 0, 1, 10, 0, 0, 2}
	reply, err := buildICMPv4TimeExceeded(original)
	require.NoError(t, err)
	require.Equal(t, uint8(11), reply[0])
	require.Equal(t, uint8(0), reply[1])
	require.Equal(t, []byte{0, 0, 0, 0}, reply[4:8])
	require.Equal(t, original, reply[8:])
}
