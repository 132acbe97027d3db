// Package rawterm owns the process-global terminal state for the
// interactive console: cbreak input and a non-blocking stdin. Nothing
// outside the console component should touch it.
package rawterm

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// IsTerminal reports whether fd is attached to a terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// Guard holds a terminal in cbreak mode with non-blocking reads and
// restores the prior state exactly once on Restore. Cbreak clears echo
// and canonical buffering only; the kernel keeps mapping carriage return
// to newline, so Enter arrives as '\n'.
type Guard struct {
	fd        int
	prevState *term.State
	prevFlags int

	restoreOnce sync.Once
	restoreErr  error
}

// Acquire switches fd into cbreak mode and marks it non-blocking.
// The caller must Restore on every exit path.
func Acquire(fd int) (*Guard, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("fd %d is not a terminal", fd)
	}

	prevState, err := term.GetState(fd)
	if err != nil {
		return nil, fmt.Errorf("snapshot terminal state: %w", err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("get terminal attributes: %w", err)
	}
	termios.Lflag &^= unix.ECHO | unix.ICANON
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return nil, fmt.Errorf("enter cbreak mode: %w", err)
	}

	prevFlags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		_ = term.Restore(fd, prevState)
		return nil, fmt.Errorf("get descriptor flags: %w", err)
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, prevFlags|unix.O_NONBLOCK); err != nil {
		_ = term.Restore(fd, prevState)
		return nil, fmt.Errorf("set non-blocking: %w", err)
	}

	return &Guard{fd: fd, prevState: prevState, prevFlags: prevFlags}, nil
}

// ReadByte returns one pending keystroke without blocking. ok is false
// when nothing is pending.
func (g *Guard) ReadByte() (byte, bool, error) {
	var buf [1]byte
	for {
		n, err := unix.Read(g.fd, buf[:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, unix.EAGAIN) {
				return 0, false, nil
			}
			return 0, false, fmt.Errorf("read keystroke: %w", err)
		}
		if n == 0 {
			return 0, false, nil
		}
		return buf[0], true, nil
	}
}

// Restore reverts both the terminal attributes and the descriptor flags
// captured by Acquire. Safe to call more than once.
func (g *Guard) Restore() error {
	g.restoreOnce.Do(func() {
		if _, err := unix.FcntlInt(uintptr(g.fd), unix.F_SETFL, g.prevFlags); err != nil {
			g.restoreErr = fmt.Errorf("restore descriptor flags: %w", err)
		}
		if err := term.Restore(g.fd, g.prevState); err != nil && g.restoreErr == nil {
			g.restoreErr = fmt.Errorf("restore terminal state: %w", err)
		}
	})
	return g.restoreErr
}
