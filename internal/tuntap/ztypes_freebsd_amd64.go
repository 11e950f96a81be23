// Created by mkdefs.sh - DO NOT EDIT
// cgo -godefs types_freebsd.go

package tuntap

const flagTruncated = 0

const (
	ifNameSize      = 0x10
	ifreqSize       = 0x20
	in6SockAddrSize = 0x1c
	in6AliasReqSize = 0x80

	TUNSLMODE       = 0x8004745d
	TUNSIFHEAD      = 0x80047460
	SIOCAIFADDR_IN6 = 0x8080691a
)
