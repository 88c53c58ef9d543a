package commands

import (
	"github.com/gatewatch/gatewatch/internal/cli/shellcomp"
)

var completionCmd = shellcomp.Command("rangerd")
