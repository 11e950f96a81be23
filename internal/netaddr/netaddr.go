// Package netaddr implements the pure address arithmetic that maps a
// required host count to a subnet prefix length, and a sequence number
// inside that subnet to a concrete host address.
//
// Every function here is pure and allocation-light by design: it is
// exercised both by property tests and, per-packet, by internal/engine on
// the hot path of every inbound datagram.
package netaddr

import (
	"fmt"
	"math/bits"
	"net"
)

// Family distinguishes the address width a computation operates over.
type Family int

const (
	// IPv4 addresses are 32 bits wide.
	IPv4 Family = 32
	// IPv6 addresses are 128 bits wide.
	IPv6 Family = 128
)

func (f Family) bytes() int { return int(f) / 8 }

// String renders the family the way log fields expect it.
func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// FamilyOf returns the Family an address belongs to, based on whether it
// has a usable 4-byte form.
func FamilyOf(ip net.IP) Family {
	if ip.To4() != nil {
		return IPv4
	}
	return IPv6
}

// PrefixFor returns the smallest prefix length (largest subnet) whose
// host part can hold nHosts usable addresses plus the two reserved slots
// (network and broadcast/all-ones, kept for v6 too for symmetry).
//
// prefix = width - ceil(log2(nHosts + 2))
//
// An error is returned if nHosts is zero, or if the required host part
// would take up the whole address width (prefix <= 0).
func PrefixFor(nHosts int, family Family) (int, error) {
	if nHosts <= 0 {
		return 0, fmt.Errorf("netaddr: nhosts must be >= 1, got %d", nHosts)
	}
	width := int(family)
	hostBits := ceilLog2(nHosts + 2)
	prefix := width - hostBits
	if prefix <= 0 || prefix >= width {
		return 0, fmt.Errorf("netaddr: nhosts=%d needs %d host bits, leaving no network prefix in a %d-bit %s address", nHosts, hostBits, width, family)
	}
	return prefix, nil
}

// ceilLog2 returns ceil(log2(n)) for n >= 1 using integer bit-length
// arithmetic so the result is identical across platforms (no floating
// point rounding is involved).
func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Mask returns the prefixLen-bit netmask for the given family, in
// network byte order: prefixLen leading one-bits followed by zero bits.
func Mask(prefixLen int, family Family) net.IPMask {
	return net.CIDRMask(prefixLen, int(family))
}

// NetmaskAddress materializes a prefix length as an address, suitable
// for code that wants a netmask rather than a prefix length;
// internal/engine uses it for the netmask field of its trace logs.
func NetmaskAddress(prefixLen int, family Family) net.IP {
	mask := Mask(prefixLen, family)
	return net.IP(mask)
}

// NthAddress computes the nth host address inside the subnet that
// network belongs to under prefixLen:
//
//	base := network & mask(prefixLen)
//	return base | (n & ^mask(prefixLen))
//
// n is interpreted modulo the host-part width: values beyond the
// subnet's host capacity silently wrap, exactly like the bitwise
// formula above implies. The returned address always serializes in the
// same family as network.
func NthAddress(n uint64, prefixLen int, network net.IP) net.IP {
	family := FamilyOf(network)
	width := family.bytes()
	netBytes := normalize(network, family)
	mask := Mask(prefixLen, family)

	out := make(net.IP, width)
	hostBytes := uint64ToBytes(n, width)
	for i := 0; i < width; i++ {
		base := netBytes[i] & mask[i]
		host := hostBytes[i] & ^mask[i]
		out[i] = base | host
	}
	return out
}

// normalize returns ip's raw bytes in the given family's width,
// regardless of whether net.IP is carrying a 16-byte internal
// representation of a v4 address.
func normalize(ip net.IP, family Family) []byte {
	if family == IPv4 {
		if v4 := ip.To4(); v4 != nil {
			return v4
		}
	}
	if v16 := ip.To16(); v16 != nil && family == IPv6 {
		return v16
	}
	return ip
}

// uint64ToBytes lays n out big-endian into a slice of the given byte
// width, with n occupying the low-order bytes (the high-order bytes, if
// any, are zero). This is how a small TTL/hop-limit value "n" gets
// interpreted as the host part of a wide (v6) address.
func uint64ToBytes(n uint64, width int) []byte {
	out := make([]byte, width)
	for i := 0; i < 8 && i < width; i++ {
		out[width-1-i] = byte(n >> (8 * i))
	}
	return out
}
