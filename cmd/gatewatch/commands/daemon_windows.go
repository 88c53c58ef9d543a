//go:build windows

package commands

import "errors"

// Daemonizing re-executes the binary with Unix process-group semantics,
// which Windows does not have.
func startDaemon() error {
	return errors.New("daemon mode requires a Unix system; run with --foreground instead")
}
