// Package readiness signals the process's init system once every
// configured TUN interface has an address and a running event-loop
// goroutine.
//
// Outside of systemd (a plain terminal, a container without
// NOTIFY_SOCKET set) this is a silent no-op. sd_notify itself detects
// the absence of a notification socket and returns false with no
// error, so callers never need to special-case "not running under
// systemd".
package readiness

import (
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/sirupsen/logrus"
)

// Ready notifies the supervisor that startup is complete. Errors are
// logged, not propagated: a failed readiness notification is not a
// reason to stop serving traffic the process has already bound to.
func Ready(log *logrus.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		log.WithError(err).Warn("failed to notify service manager of readiness")
		return
	}
	if sent {
		log.Debug("notified service manager of readiness")
	}
}
