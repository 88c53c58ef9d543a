package main

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/commands"
	"github.com/gatewatch/gatewatch/internal/cli/buildinfo"
)

// Injected at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Build = buildinfo.Info{
		Binary:  "gatewatchctl",
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
