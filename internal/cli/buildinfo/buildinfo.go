// Package buildinfo carries the build metadata stamped into gatewatch
// binaries at link time.
package buildinfo

import (
	"fmt"
	"io"
	"runtime"
)

// Info identifies one build of a gatewatch binary. Each main package
// fills it from its ldflags-injected variables before command dispatch.
type Info struct {
	Binary  string
	Version string
	Commit  string
	Date    string
}

// Print writes the block shown by the 'version' command of every
// gatewatch binary.
func (i Info) Print(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", i.Binary, i.Version)
	fmt.Fprintf(w, "  Commit:     %s\n", i.Commit)
	fmt.Fprintf(w, "  Built:      %s\n", i.Date)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(w, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
