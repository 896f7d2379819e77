package cmd

import (
	"mcpagent/pkg/logging"

	"github.com/coreos/go-systemd/v22/daemon"
)

// notifySystemd reports a state change when running as a systemd notify
// service. Without NOTIFY_SOCKET it does nothing.
func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("Keepalive", "Failed to notify systemd (%s): %v", state, err)
		return
	}
	if sent {
		logging.Debug("Keepalive", "Notified systemd: %s", state)
	}
}
