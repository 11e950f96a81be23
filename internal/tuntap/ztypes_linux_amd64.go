// Created by cgo -godefs - DO NOT EDIT
// cgo -godefs types_linux.go

package tuntap

const (
	flagTruncated = 0x1

	iffTun = 0x1
	iffTap = 0x2
)

type ifReq struct {
	Name  [0x10]byte
	Flags uint16
	pad   [0x16]byte
}
