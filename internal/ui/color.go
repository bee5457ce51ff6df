// Package ui renders boxsync's terminal output.
package ui

import (
	"fmt"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Success marks completed uploads and downloads (green).
	Success = color.New(color.FgGreen).SprintFunc()
	// Error marks failures (red).
	Error = color.New(color.FgRed).SprintFunc()
	// Warning marks abandoned operations (yellow).
	Warning = color.New(color.FgYellow).SprintFunc()
	// Info highlights hosts and paths (cyan).
	Info = color.New(color.FgCyan).SprintFunc()
	// Bold is used for emphasis.
	Bold = color.New(color.Bold).SprintFunc()
	// Dim is used for secondary detail.
	Dim = color.New(color.Faint).SprintFunc()
	// Header is used for section headings (bold cyan).
	Header = color.New(color.FgCyan, color.Bold).SprintFunc()
)

const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolSkipped = "-"
)

var titleCaser = cases.Title(language.English)

func status(symbol string, paint func(...any) string, msg string) string {
	if msg == "" {
		return paint(symbol)
	}
	return paint(symbol) + " " + msg
}

// StatusSuccess returns a green checkmark with optional message.
func StatusSuccess(msg string) string { return status(SymbolSuccess, Success, msg) }

// StatusError returns a red cross with optional message.
func StatusError(msg string) string { return status(SymbolError, Error, msg) }

// StatusWarning returns a yellow warning sign with optional message.
func StatusWarning(msg string) string { return status(SymbolWarning, Warning, msg) }

// StatusSkipped returns a dimmed dash with optional message.
func StatusSkipped(msg string) string { return status(SymbolSkipped, Dim, msg) }

// Title cases a heading, e.g. "configured hosts" -> "Configured Hosts".
func Title(s string) string {
	return titleCaser.String(s)
}

// HostLine formats one line of a per-host report: "✓ name(address): detail".
func HostLine(ok bool, host, detail string) string {
	line := Info(host)
	if detail != "" {
		line = fmt.Sprintf("%s: %s", line, detail)
	}
	if ok {
		return StatusSuccess(line)
	}
	return StatusError(line)
}

// DisableColors turns off color output, for pipes and NO_COLOR.
func DisableColors() {
	color.NoColor = true
}

// EnableColors turns color output back on.
func EnableColors() {
	color.NoColor = false
}

// IsColorEnabled reports whether colors are currently enabled.
func IsColorEnabled() bool {
	return !color.NoColor
}
