// Package platform provides an OS abstraction layer for terminal details
// the standard library does not expose.
package platform

import "os"

// DefaultTerminalWidth is used when the width cannot be determined, for
// example when output is redirected.
const DefaultTerminalWidth = 80

// Platform provides OS-specific functionality.
type Platform interface {
	// TerminalWidth returns the column count of the terminal attached to f,
	// or DefaultTerminalWidth if f is not a terminal.
	TerminalWidth(f *os.File) int

	// Name returns the platform name (unix, stub).
	Name() string
}
