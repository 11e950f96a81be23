package netaddr

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefixFor(t *testing.T) {
	cases := []struct {
		nHosts int
		family Family
		want   int
	}{
		{8, IPv4, 28},
		{1, IPv4, 30},
		{16, IPv6, 123},
		{1, IPv6, 126},
		{254, IPv4, 24},
	}
	for _, c := range cases {
		got, err := PrefixFor(c.nHosts, c.family)
		require.NoError(t, err)
		require.Equal(t, c.want, got, "nHosts=%d family=%s", c.nHosts, c.family)
	}
}

func TestPrefixForRejectsInvalid(t *testing.T) {
	_, err := PrefixFor(0, IPv4)
	require.Error(t, err)

	_, err = PrefixFor(1<<31, IPv4)
	require.Error(t, err)
}

func TestNthAddressIPv4(t *testing.T) {
	net0 := net.ParseIP("10.0.0.0")
	require.Equal(t, "10.0.0.1", NthAddress(1, 24, net0).String())
	require.Equal(t, "10.0.0.255", NthAddress(255, 24, net0).String())
	require.Equal(t, "10.0.0.3", NthAddress(3, 28, net0).String())

	net125 := net.ParseIP("10.0.0.125")
	require.Equal(t, "10.0.0.1", NthAddress(1, 24, net125).String())

	net4 := net.ParseIP("10.0.0.4")
	require.Equal(t, "10.0.0.5", NthAddress(1, 30, net4).String())
}

func TestNthAddressIPv6(t *testing.T) {
	base := net.ParseIP("fe80::")
	require.Equal(t, "fe80::1", NthAddress(1, 64, base).String())

	dbase := net.ParseIP("2001:db8::")
	require.Equal(t, "2001:db8::5", NthAddress(5, 123, dbase).String())
}

func TestNthAddressWrapsBeyondHostCapacity(t *testing.T) {
	net0 := net.ParseIP("10.0.0.0")
	// /30 has a 2-bit host part (0-3); n=5 wraps to 5 mod 4 == 1.
	require.Equal(t, NthAddress(1, 30, net0).String(), NthAddress(5, 30, net0).String())
}

func TestNthAddressNeverEqualsNetworkAddressForN1(t *testing.T) {
	for _, n := range []string{"10.0.0.0", "172.16.3.0", "2001:db8::", "fe80::"} {
		network := net.ParseIP(n)
		family := FamilyOf(network)
		prefix, err := PrefixFor(4, family)
		require.NoError(t, err)
		got := NthAddress(1, prefix, network)
		require.False(t, got.Equal(network.Mask(Mask(prefix, family))), "n=1 produced the network address for %s", n)
	}
}

func TestNthAddressStaysInsideSubnet(t *testing.T) {
	network := net.ParseIP("192.168.100.0")
	prefix, err := PrefixFor(30, IPv4)
	require.NoError(t, err)
	mask := Mask(prefix, IPv4)
	wantNet := network.Mask(mask)

	for n := uint64(0); n < 64; n++ {
		addr := NthAddress(n, prefix, network)
		require.True(t, addr.Mask(mask).Equal(wantNet), "n=%d escaped subnet: %s", n, addr)
	}
}
