// Package cli — ANSI color constants, disabled on incapable terminals.
package cli

import (
	"github.com/devplatform/dpcli/internal/terminal"
)

// ANSI escape sequences. Empty when terminal.ColorDisabled().
var (
	ansiReset  string
	ansiBold   string
	ansiGreen  string
	ansiYellow string
	ansiRed    string
	ansiCyan   string
	ansiGray   string
)

func init() {
	if terminal.ColorDisabled() {
		return
	}
	ansiReset = "\033[0m"
	ansiBold = "\033[1m"
	ansiGreen = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed = "\033[31m"
	ansiCyan = "\033[36m"
	ansiGray = "\033[90m"
}
