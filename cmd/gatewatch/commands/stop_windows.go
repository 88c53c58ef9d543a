//go:build windows

package commands

import (
	"errors"
	"fmt"
	"os"
)

// processAlive reports whether a process with the given PID exists.
// On Windows, FindProcess opens a handle and fails for dead PIDs.
func processAlive(pid int) bool {
	_, err := os.FindProcess(pid)
	return err == nil
}

// stopProcess stops the server on Windows. Graceful mode sends
// os.Interrupt; force mode kills the process outright.
func stopProcess(process *os.Process, pid int, force bool) error {
	var err error
	if force {
		fmt.Printf("Killing process %d...\n", pid)
		err = process.Kill()
	} else {
		fmt.Printf("Sending interrupt to process %d...\n", pid)
		err = process.Signal(os.Interrupt)
	}

	switch {
	case errors.Is(err, os.ErrProcessDone):
		return errProcessDone
	case err != nil:
		return fmt.Errorf("failed to stop process: %w", err)
	}
	return nil
}
