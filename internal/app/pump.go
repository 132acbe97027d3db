package app

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jwolf02/Monitor/internal/ports"
	"github.com/jwolf02/Monitor/pkg/log"
)

// PollInterval is the sleep between transport polls. It bounds the CPU
// usage of the read and render loops.
const PollInterval = 10 * time.Millisecond

// Pump continuously drains the transport into the line queue from its own
// goroutine. It owns the framer; no other goroutine touches it. The pump
// stops on context cancellation or the first transport error.
type Pump struct {
	transport ports.Transport
	framer    *Framer
	queue     *LineQueue
	interval  time.Duration
	logger    log.Logger

	done chan struct{}
	err  error // written once, before done is closed
}

// NewPump creates a pump reading from transport into queue.
func NewPump(transport ports.Transport, queue *LineQueue, logger log.Logger) *Pump {
	return &Pump{
		transport: transport,
		framer:    NewFramer(),
		queue:     queue,
		interval:  PollInterval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Run executes the read loop. It returns the transport error that stopped
// the pump, or ctx.Err() after cancellation. Done() is closed on return.
func (p *Pump) Run(ctx context.Context) error {
	defer close(p.done)

	for {
		select {
		case <-ctx.Done():
			p.err = ctx.Err()
			return p.err
		default:
		}

		chunk, err := p.transport.ReadAvailable()
		if err != nil {
			p.logger.Error("transport read failed", log.Err(err))
			p.err = err
			return p.err
		}
		if len(chunk) > 0 {
			for _, line := range p.framer.Feed(decodeLossy(chunk)) {
				p.queue.Push(line)
			}
		}

		select {
		case <-ctx.Done():
			p.err = ctx.Err()
			return p.err
		case <-time.After(p.interval):
		}
	}
}

// Done is closed once the pump has stopped.
func (p *Pump) Done() <-chan struct{} {
	return p.done
}

// Err returns the error that stopped the pump, valid after Done is closed.
func (p *Pump) Err() error {
	return p.err
}

// decodeLossy converts a raw chunk to text, masking undecodable bytes
// with the Unicode replacement character. Decode problems are never fatal.
func decodeLossy(chunk []byte) string {
	if utf8.Valid(chunk) {
		return string(chunk)
	}
	return strings.ToValidUTF8(string(chunk), string(utf8.RuneError))
}
