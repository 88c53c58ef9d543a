//go:build !windows

package commands

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyKick relays SIGUSR1 so an operator can force a sync pass on a
// running agent, typically right after connectivity returns.
func notifyKick(c chan<- os.Signal) {
	signal.Notify(c, syscall.SIGUSR1)
}
