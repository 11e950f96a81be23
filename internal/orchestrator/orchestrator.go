// Package orchestrator brings up one TUN interface per configured
// virtual network, assigns the address and netmask/prefix that
// interface claims, and runs a dedicated read/handle/write goroutine
// for it.
package orchestrator

import (
	"fmt"
	"io"
	"net"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ftsell/viptraceroute/internal/config"
	"github.com/ftsell/viptraceroute/internal/engine"
	"github.com/ftsell/viptraceroute/internal/netaddr"
	"github.com/ftsell/viptraceroute/internal/tuntap"
)

// readBufferSize comfortably holds any IP datagram this system will
// ever see from a traceroute probe.
const readBufferSize = 2048

// ifaceMTU matches the standard Ethernet-derived default so a probe
// generator sizing its datagrams against a normal path doesn't get
// silently truncated by this virtual hop.
const ifaceMTU = 1500

// Run creates one TUN interface per cfg.Networks entry, spawns each
// interface's event loop, and then invokes onReady (if non-nil) once
// every interface is up and has its loop started. It blocks until
// every loop has returned. Normally that never happens, since a read
// error only terminates the one interface it happened on; Run returns
// once the last surviving interface's loop exits.
func Run(cfg *config.Config, onReady func()) error {
	loops := make([]*loop, 0, len(cfg.Networks))

	for i, net4or6 := range cfg.Networks {
		ifaceName := fmt.Sprintf("%s%d", cfg.IfaceBaseName, i)
		l, err := newLoop(cfg, ifaceName, net4or6)
		if err != nil {
			// Tear down whatever was already opened so a partial
			// configuration doesn't leak TUN devices.
			for _, already := range loops {
				already.iface.Close()
			}
			return errors.Wrapf(err, "orchestrator: bringing up interface %s", ifaceName)
		}
		loops = append(loops, l)
	}

	done := make(chan struct{}, len(loops))
	for _, l := range loops {
		go func(l *loop) {
			l.run()
			done <- struct{}{}
		}(l)
	}

	if onReady != nil {
		onReady()
	}

	for range loops {
		<-done
	}
	return nil
}

type loop struct {
	iface *tuntap.Interface
	cfg   engine.Config
	log   *logrus.Entry
}

func newLoop(cfg *config.Config, ifaceName string, n config.Network) (*loop, error) {
	log := cfg.Log.WithField("iface", ifaceName)

	iface, err := tuntap.Open(ifaceName, tuntap.DevTun)
	if err != nil {
		return nil, errors.Wrap(err, "opening tun device")
	}

	subnetBase := n.Base.Mask(netaddr.Mask(n.Prefix, n.Family))
	subnet := &net.IPNet{IP: subnetBase, Mask: netaddr.Mask(n.Prefix, n.Family)}
	if err := iface.AddAddress(n.OwnAddress, subnet); err != nil {
		iface.Close()
		return nil, errors.Wrap(err, "assigning address")
	}
	if err := iface.SetMTU(ifaceMTU); err != nil {
		iface.Close()
		return nil, errors.Wrap(err, "setting mtu")
	}
	if n.Family == netaddr.IPv6 {
		// This system assigns every virtual address itself; SLAAC
		// would let the kernel add an address we didn't choose.
		if err := iface.IPv6SLAAC(false); err != nil {
			log.WithError(err).Warn("could not disable SLAAC on virtual interface")
		}
		// Each virtual network terminates at this process; it never
		// routes between interfaces, so forwarding stays off.
		if err := iface.IPv6Forwarding(false); err != nil {
			log.WithError(err).Warn("could not disable forwarding on virtual interface")
		}
	} else {
		// This is an IPv4-only virtual interface; disabling IPv6 on it
		// keeps the kernel from assigning it a link-local address and
		// answering neighbor discovery traffic no probe ever targets.
		if err := iface.IPv6(false); err != nil {
			log.WithError(err).Warn("could not disable ipv6 on virtual interface")
		}
	}
	if err := iface.Up(); err != nil {
		iface.Close()
		return nil, errors.Wrap(err, "bringing interface up")
	}

	capacity := uint64(1) << uint(int(n.Family)-n.Prefix)
	log.WithFields(logrus.Fields{
		"family":      n.Family.String(),
		"own_address": n.OwnAddress.String(),
		"prefix":      n.Prefix,
		"capacity":    capacity - 2,
	}).Info("virtual interface ready")

	return &loop{
		iface: iface,
		cfg:   engine.Config{NHosts: cfg.NHosts, Log: log},
		log:   log,
	}, nil
}

// run is the per-interface event loop: read exactly one datagram, hand
// it to the packet engine, and if it produced a reply, write the reply
// back to the same interface. A read error is fatal to this loop only;
// a write error is logged and the loop continues.
func (l *loop) run() {
	buf := make([]byte, readBufferSize)
	for {
		pkt, err := l.iface.ReadPacket(buf)
		if err != nil {
			if isRecoverableReadError(err) {
				l.log.WithError(err).Debug("dropping unreadable datagram")
				continue
			}
			if err == io.EOF {
				l.log.Info("tun device closed, stopping loop")
				return
			}
			l.log.WithError(err).Error("fatal read error, stopping loop")
			return
		}

		l.log.Trace(pkt.String())

		reply := engine.Handle(l.cfg, pkt.Body)
		if reply == nil {
			continue
		}

		if err := l.iface.WritePacket(tuntap.Packet{Body: reply, Protocol: pkt.Protocol}); err != nil {
			l.log.WithError(err).Warn("failed to write reply")
		}
	}
}

// isRecoverableReadError reports whether err reflects a malformed
// datagram rather than a hard kernel/descriptor failure.
// tuntap.ReadPacket returns the same error shape for both, so the
// sentinel values it documents are how callers tell them apart.
func isRecoverableReadError(err error) bool {
	switch err {
	case tuntap.ErrShortRead, tuntap.ErrTruncatedPacket, tuntap.ErrNotIPPacket, tuntap.ErrJumboPacket:
		return true
	default:
		return false
	}
}
