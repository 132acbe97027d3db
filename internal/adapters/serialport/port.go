// Package serialport implements ports.Transport on a Linux serial device
// using raw termios configuration.
package serialport

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jwolf02/Monitor/internal/domain"
)

const readChunkSize = 4096

// Config holds the parameters for opening a serial device.
type Config struct {
	Device   string
	BaudRate int
}

// Port is a serial device configured for raw 8N1 operation with
// non-blocking reads. DTR and RTS are deasserted at open so boards that
// tie them to reset lines (common on ESP32 dev kits) are not rebooted by
// the monitor attaching.
type Port struct {
	fd        int
	device    string
	closeOnce sync.Once
	closed    chan struct{}
}

// Open opens and configures the device. The descriptor stays in
// non-blocking mode for the lifetime of the port.
func Open(cfg Config) (*Port, error) {
	baud, err := baudToUnix(cfg.BaudRate)
	if err != nil {
		return nil, err
	}

	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN

	// 8N1, receiver on, modem status lines ignored
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB
	termios.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL

	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	// VTIME only matters for blocking descriptors; kept at the device's
	// conventional 1s bound in case a caller clears O_NONBLOCK.
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 10

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	// Deassert DTR and RTS. Pseudo-terminals have no modem lines and
	// report ENOTTY or EINVAL; that is not a failure.
	if err := unix.IoctlSetPointerInt(fd, unix.TIOCMBIC, unix.TIOCM_DTR|unix.TIOCM_RTS); err != nil {
		if !errors.Is(err, unix.ENOTTY) && !errors.Is(err, unix.EINVAL) {
			unix.Close(fd)
			return nil, fmt.Errorf("clear DTR/RTS: %w", err)
		}
	}

	return &Port{
		fd:     fd,
		device: cfg.Device,
		closed: make(chan struct{}),
	}, nil
}

// ReadAvailable drains all bytes currently buffered by the kernel and
// returns them. It never blocks; a quiet link yields (nil, nil).
func (p *Port) ReadAvailable() ([]byte, error) {
	if p.isClosed() {
		return nil, domain.ErrTransportClosed
	}

	var out []byte
	buf := make([]byte, readChunkSize)
	for {
		n, err := unix.Read(p.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return out, nil
			}
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return out, fmt.Errorf("read %s: %w", p.device, err)
		}
		if n == 0 {
			return out, nil
		}
		out = append(out, buf[:n]...)
		if n < len(buf) {
			return out, nil
		}
	}
}

// Write sends p's bytes to the device, retrying on short writes and on a
// momentarily full output buffer.
func (p *Port) Write(data []byte) (int, error) {
	if p.isClosed() {
		return 0, domain.ErrTransportClosed
	}

	written := 0
	for written < len(data) {
		n, err := unix.Write(p.fd, data[written:])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				time.Sleep(time.Millisecond)
				continue
			}
			return written, fmt.Errorf("write %s: %w", p.device, err)
		}
		written += n
	}
	return written, nil
}

// Close releases the device. Safe to call multiple times.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.closed)
		err = unix.Close(p.fd)
	})
	return err
}

func (p *Port) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

// Device returns the device path the port was opened with.
func (p *Port) Device() string {
	return p.device
}

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 921600:
		return unix.B921600, nil
	default:
		return 0, fmt.Errorf("%w: unsupported baud rate %d", domain.ErrInvalidConfig, baud)
	}
}
