//go:build linux || darwin || freebsd || netbsd || openbsd

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// UnixPlatform reads terminal geometry with the TIOCGWINSZ ioctl.
type UnixPlatform struct{}

// New creates a platform instance for Unix systems.
func New() Platform {
	return &UnixPlatform{}
}

// Name returns the platform identifier.
func (p *UnixPlatform) Name() string { return "unix" }

// TerminalWidth queries the window size of f.
func (p *UnixPlatform) TerminalWidth(f *os.File) int {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return DefaultTerminalWidth
	}
	return int(ws.Col)
}
