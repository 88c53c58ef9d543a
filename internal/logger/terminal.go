package logger

import "github.com/mattn/go-isatty"

// isTerminal reports whether fd is attached to a terminal, so color
// output can be enabled only when someone is watching.
func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
