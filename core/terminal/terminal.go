// Package terminal switches a terminal between its normal mode and the
// character-at-a-time mode used by the line editor.
package terminal

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when the file descriptor isn't a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// Driver acquires and releases raw line mode on a single file descriptor.
type Driver struct {
	fd int

	mu        sync.Mutex
	backup    *unix.Termios
	inRawMode bool
}

// New creates a driver for the given file descriptor, usually os.Stdin.Fd().
func New(fd uintptr) *Driver {
	return &Driver{fd: int(fd)}
}

// IsTerminal reports whether the driver's file descriptor is a terminal.
func (d *Driver) IsTerminal() bool {
	return term.IsTerminal(d.fd)
}

// Begin captures the current terminal attributes then disables canonical
// input and local echo. The change applies immediately.
func (d *Driver) Begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inRawMode {
		return nil
	}
	if !d.IsTerminal() {
		return ErrNotTerminal
	}

	termios, err := unix.IoctlGetTermios(d.fd, ioctlReadTermios)
	if err != nil {
		return fmt.Errorf("failed to read terminal attributes: %w", err)
	}
	backup := *termios

	termios.Lflag &^= unix.ICANON | unix.ECHO
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(d.fd, ioctlWriteTermios, termios); err != nil {
		return fmt.Errorf("failed to enter raw line mode: %w", err)
	}

	d.backup = &backup
	d.inRawMode = true
	return nil
}

// End restores the attributes captured by Begin. It's safe to call when Begin
// failed or was never called.
func (d *Driver) End() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.inRawMode || d.backup == nil {
		return nil
	}
	d.inRawMode = false

	if err := unix.IoctlSetTermios(d.fd, ioctlWriteTermios, d.backup); err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	return nil
}
