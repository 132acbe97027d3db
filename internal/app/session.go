package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jwolf02/Monitor/internal/ports"
	"github.com/jwolf02/Monitor/pkg/log"
)

// Session runs the non-interactive mode: one single-threaded loop that
// reads the transport, frames complete lines, and dispatches each line
// immediately. No queue and no reader goroutine are involved; this mode
// never touches the terminal settings.
type Session struct {
	transport  ports.Transport
	framer     *Framer
	dispatcher *Dispatcher
	interval   time.Duration
	logger     log.Logger
}

// NewSession creates a non-interactive session loop.
func NewSession(transport ports.Transport, dispatcher *Dispatcher, logger log.Logger) *Session {
	return &Session{
		transport:  transport,
		framer:     NewFramer(),
		dispatcher: dispatcher,
		interval:   PollInterval,
		logger:     logger,
	}
}

// Run executes the loop until the context is canceled, the transport
// fails, or a filter returns an error. Cancellation is reported as
// ctx.Err().
func (s *Session) Run(ctx context.Context) error {
	s.logger.Debug("session loop started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, err := s.transport.ReadAvailable()
		if err != nil {
			return fmt.Errorf("transport read: %w", err)
		}
		if len(chunk) > 0 {
			for _, line := range s.framer.Feed(decodeLossy(chunk)) {
				if err := s.dispatcher.HandleLine(line); err != nil {
					return err
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.interval):
		}
	}
}
