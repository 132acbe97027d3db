package app

import (
	"fmt"
	"io"

	"github.com/jwolf02/Monitor/internal/domain"
	"github.com/jwolf02/Monitor/internal/ports"
)

// Dispatcher applies the per-line pipeline shared by both session modes:
// tee to the dump sink first, then offer to the filter chain, then print
// verbatim when no filter claimed the line. The tee happens before any
// filter runs so the dump keeps raw content even for suppressed lines.
type Dispatcher struct {
	chain *Chain
	sink  ports.LineSink // nil when no dump file is configured
	out   io.Writer
	extra domain.ExtraArgs
}

// NewDispatcher creates a dispatcher. sink may be nil.
func NewDispatcher(chain *Chain, sink ports.LineSink, out io.Writer, extra domain.ExtraArgs) *Dispatcher {
	return &Dispatcher{
		chain: chain,
		sink:  sink,
		out:   out,
		extra: extra,
	}
}

// HandleLine runs one line through tee, chain, and default print.
// Any error is fatal to the session.
func (d *Dispatcher) HandleLine(line string) error {
	if d.sink != nil {
		if err := d.sink.WriteLine(line); err != nil {
			return fmt.Errorf("dump sink: %w", err)
		}
	}

	claimed, err := d.chain.Dispatch(line, d.extra)
	if err != nil {
		return err
	}
	if !claimed {
		if _, err := fmt.Fprintln(d.out, line); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}
