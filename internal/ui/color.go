// Package ui provides terminal UI utilities for pdparty.
package ui

import (
	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klauern/pdparty/internal/registry"
	"github.com/klauern/pdparty/internal/treesync"
)

// Color function types for styled output.
var (
	// Success is used for successful operations (green).
	Success = color.New(color.FgGreen).SprintFunc()
	// Error is used for errors and failures (red).
	Error = color.New(color.FgRed).SprintFunc()
	// Warning is used for warnings and cautions (yellow).
	Warning = color.New(color.FgYellow).SprintFunc()
	// Info is used for informational messages (cyan).
	Info = color.New(color.FgCyan).SprintFunc()
	// Bold is used for emphasis (bold white).
	Bold = color.New(color.Bold).SprintFunc()
	// Dim is used for secondary information (faint).
	Dim = color.New(color.Faint).SprintFunc()
	// Header is used for section headers (bold cyan).
	Header = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Status symbols.
const (
	SymbolSuccess  = "✓"
	SymbolError    = "✗"
	SymbolWarning  = "⚠"
	SymbolSkipped  = "-"
	SymbolPending  = "○"
	SymbolReplaced = "↻"
)

// StatusSuccess returns a green checkmark with optional message.
func StatusSuccess(msg string) string {
	return status(Success, SymbolSuccess, msg)
}

// StatusError returns a red X with optional message.
func StatusError(msg string) string {
	return status(Error, SymbolError, msg)
}

// StatusWarning returns a yellow warning with optional message.
func StatusWarning(msg string) string {
	return status(Warning, SymbolWarning, msg)
}

// StatusSkipped returns a dimmed skip symbol with optional message.
func StatusSkipped(msg string) string {
	return status(Dim, SymbolSkipped, msg)
}

func status(paint func(...any) string, symbol, msg string) string {
	if msg == "" {
		return paint(symbol)
	}
	return paint(symbol) + " " + msg
}

var titleCaser = cases.Title(language.English)

// Title converts snake_case labels such as "torn_down" into "Torn Down".
func Title(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c == '_' {
			b[i] = ' '
		}
	}
	return titleCaser.String(string(b))
}

// ActionSymbol returns the colored symbol for a sync action.
func ActionSymbol(a treesync.Action) string {
	switch a {
	case treesync.ActionAdded:
		return Success("+")
	case treesync.ActionReplaced:
		return Info(SymbolReplaced)
	case treesync.ActionUnchanged:
		return Dim("=")
	case treesync.ActionFailed:
		return Error(SymbolError)
	default:
		return Dim("?")
	}
}

// ActionLabel returns the title-cased, colored name of a sync action.
func ActionLabel(a treesync.Action) string {
	label := Title(string(a))
	switch a {
	case treesync.ActionAdded:
		return Success(label)
	case treesync.ActionReplaced:
		return Info(label)
	case treesync.ActionFailed:
		return Error(label)
	default:
		return Dim(label)
	}
}

// StateLabel returns the title-cased, colored name of a subsystem state.
func StateLabel(s registry.State) string {
	label := Title(s.String())
	switch s {
	case registry.StateActive:
		return Success(label)
	case registry.StateSuspended:
		return Warning(label)
	case registry.StateFailed:
		return Error(label)
	default:
		return Dim(label)
	}
}

// DisableColors disables all color output.
// This is useful for piping output or for users who prefer no colors.
func DisableColors() {
	color.NoColor = true
}

// EnableColors enables color output.
func EnableColors() {
	color.NoColor = false
}

// IsColorEnabled returns whether colors are currently enabled.
func IsColorEnabled() bool {
	return !color.NoColor
}
