//go:build windows

package commands

import "os"

// notifyKick is a no-op on Windows, which has no SIGUSR1. The agent still
// syncs on its regular interval.
func notifyKick(c chan<- os.Signal) {}
