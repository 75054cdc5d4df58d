//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package platform

import "os"

// StubPlatform is used where no terminal query is implemented.
type StubPlatform struct{}

// New creates a stub platform instance.
func New() Platform {
	return &StubPlatform{}
}

// Name returns the platform identifier.
func (p *StubPlatform) Name() string { return "stub" }

// TerminalWidth always returns DefaultTerminalWidth.
func (p *StubPlatform) TerminalWidth(*os.File) int { return DefaultTerminalWidth }
