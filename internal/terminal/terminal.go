// Package terminal provides cross-platform terminal capability detection.
package terminal

import (
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"
)

// ColorDisabled returns true when ANSI colors should be disabled.
// - DPCLI_NO_COLOR or NO_COLOR env set (any value)
// - Windows without Windows Terminal (cmd.exe, older PowerShell)
//
// Windows Terminal is detected via WT_SESSION or TERM_PROGRAM=WindowsTerminal.
func ColorDisabled() bool {
	if strings.TrimSpace(os.Getenv("DPCLI_NO_COLOR")) != "" || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return true
	}
	if runtime.GOOS != "windows" {
		return false
	}
	wtSession := strings.TrimSpace(os.Getenv("WT_SESSION"))
	termProgram := strings.TrimSpace(os.Getenv("TERM_PROGRAM"))
	return wtSession == "" && termProgram != "WindowsTerminal"
}

// IsTTY reports whether f is attached to a terminal. Used to decide
// between the live progress line and plain CI-friendly output.
func IsTTY(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
