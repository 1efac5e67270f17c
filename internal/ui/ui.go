// Package ui renders extraction results and lets the user pick a format.
// Everything interactive is written to stderr so stdout stays scriptable.
package ui

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"sportsdl/internal/media"
)

var (
	// ErrNotTerminal is returned when an interactive prompt is requested
	// without a terminal attached.
	ErrNotTerminal = errors.New("interactive selection needs a terminal")

	// ErrCancelled is returned when the user quits the picker.
	ErrCancelled = errors.New("selection cancelled")
)

// IsTerminal reports whether both stdin and stderr are terminals.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// FormatLabel is the one-line description of a format.
func FormatLabel(f media.Format) string {
	label := string(f.Protocol)
	if res := resolution(f); res != "" {
		label += "  " + res
	}
	if f.TBR > 0 {
		label += fmt.Sprintf("  %.0fk", f.TBR)
	}
	return label
}

func resolution(f media.Format) string {
	if f.Width > 0 && f.Height > 0 {
		return fmt.Sprintf("%dx%d", f.Width, f.Height)
	}
	if f.Height > 0 {
		return fmt.Sprintf("%dp", f.Height)
	}
	return ""
}
