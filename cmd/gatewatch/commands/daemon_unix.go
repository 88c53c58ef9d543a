//go:build !windows

package commands

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// isProcessRunning reports whether the process recorded in pidPath is
// still alive, returning its PID when it is.
func isProcessRunning(pidPath string) (int, bool) {
	pid, err := readPidFile(pidPath)
	if err != nil || !processAlive(pid) {
		return 0, false
	}
	return pid, true
}

// startDaemon re-executes the binary in the background with
// --foreground, detached into its own session, with output going to the
// log file. The child writes the PID file once it is up.
func startDaemon() error {
	stateDir := GetDefaultStateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := resolvePidFile(pidFile)
	if pid, running := isProcessRunning(pidPath); running {
		return fmt.Errorf("gatewatch is already running (PID %d)\nUse 'gatewatch stop' to stop the running instance", pid)
	}
	// Stale PID files from a crashed server would confuse the next status check.
	_ = os.Remove(pidPath)

	logPath := logFile
	if logPath == "" {
		logPath = GetDefaultLogFile()
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	daemonArgs := []string{"start", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		daemonArgs = append(daemonArgs, "--config", GetConfigFile())
	}

	logSink, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logSink.Close() }()

	cmd := exec.Command(executable, daemonArgs...)
	cmd.Stdout = logSink
	cmd.Stderr = logSink
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Printf("gatewatch started in background (PID %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Println("\nUse 'gatewatch stop' to stop the server")
	fmt.Println("Use 'gatewatch status' to check server status")

	return nil
}
