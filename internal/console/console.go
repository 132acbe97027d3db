// Package console implements the interactive session mode: a line-edited
// prompt multiplexed with device output on one terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jwolf02/Monitor/internal/adapters/rawterm"
	"github.com/jwolf02/Monitor/internal/app"
	"github.com/jwolf02/Monitor/internal/ports"
	"github.com/jwolf02/Monitor/pkg/log"
)

const (
	// keyBackspace is the DEL byte terminals send for the backspace key.
	keyBackspace = 0x7f

	// eraseLine returns the cursor to column zero and clears the row.
	eraseLine = "\r\x1b[2K"

	prompt = "> "
)

// Keyboard is the console's source of operator keystrokes. The production
// implementation is rawterm.Guard.
type Keyboard interface {
	// ReadByte returns one pending keystroke without blocking.
	ReadByte() (b byte, ok bool, err error)
}

// Config wires the console loop.
type Config struct {
	// Transport receives submitted command lines.
	Transport ports.Transport

	// Queue delivers framed device lines from the pump.
	Queue *app.LineQueue

	// Dispatcher renders each drained line.
	Dispatcher *app.Dispatcher

	// Out is the terminal writer shared with the dispatcher.
	Out io.Writer

	// Interval is the tick period. Zero selects app.PollInterval.
	Interval time.Duration

	Logger log.Logger
}

// Console interleaves three duties on a single goroutine, once per tick:
// poll one keystroke, drain at most one queued device line, and redraw
// the prompt with the edit buffer. Draining one line per tick keeps the
// prompt responsive while a crash dump streams in.
type Console struct {
	keys       Keyboard
	transport  ports.Transport
	queue      *app.LineQueue
	dispatcher *app.Dispatcher
	out        io.Writer
	interval   time.Duration
	logger     log.Logger

	buf []byte
}

// New creates a console reading keystrokes from keys.
func New(cfg Config, keys Keyboard) *Console {
	interval := cfg.Interval
	if interval <= 0 {
		interval = app.PollInterval
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Console{
		keys:       keys,
		transport:  cfg.Transport,
		queue:      cfg.Queue,
		dispatcher: cfg.Dispatcher,
		out:        out,
		interval:   interval,
		logger:     logger,
	}
}

// RunInteractive acquires the terminal guard for stdin, runs the console
// loop, and restores the terminal on every exit path. This is the only
// place the process-global terminal state is touched.
func RunInteractive(ctx context.Context, cfg Config) error {
	guard, err := rawterm.Acquire(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("terminal setup: %w", err)
	}
	defer guard.Restore()

	if err := New(cfg, guard).Run(ctx); err != nil {
		return err
	}
	return guard.Restore()
}

// Run executes the console loop until the context is canceled, the
// transport write fails, or a drained line's dispatch fails.
// Cancellation is reported as ctx.Err().
func (c *Console) Run(ctx context.Context) error {
	c.logger.Debug("interactive console started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.pollKeystroke(); err != nil {
			return err
		}
		if err := c.tick(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.interval):
		}
	}
}

// pollKeystroke applies at most one keystroke to the edit buffer.
// Backspace erases, Enter submits the buffer to the transport with a
// trailing newline, printable ASCII appends. Everything else is dropped;
// line editing knows only printable ASCII and backspace.
func (c *Console) pollKeystroke() error {
	b, ok, err := c.keys.ReadByte()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	switch {
	case b == keyBackspace:
		if n := len(c.buf); n > 0 {
			c.buf = c.buf[:n-1]
			if _, err := io.WriteString(c.out, "\b \b"); err != nil {
				return fmt.Errorf("write prompt: %w", err)
			}
		}
	case b == '\n' || b == '\r':
		c.buf = append(c.buf, '\n')
		if _, err := c.transport.Write(c.buf); err != nil {
			return fmt.Errorf("transport write: %w", err)
		}
		c.buf = c.buf[:0]
	case b >= 0x20 && b <= 0x7e:
		c.buf = append(c.buf, b)
	}
	return nil
}

// tick clears the prompt row, renders at most one queued device line
// above it, and redraws the prompt with the current edit buffer.
func (c *Console) tick() error {
	if _, err := io.WriteString(c.out, eraseLine); err != nil {
		return fmt.Errorf("write prompt: %w", err)
	}

	if line, ok := c.queue.TryPop(); ok {
		if err := c.dispatcher.HandleLine(line); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(c.out, "%s%s%s", eraseLine, prompt, c.buf); err != nil {
		return fmt.Errorf("write prompt: %w", err)
	}
	return nil
}
