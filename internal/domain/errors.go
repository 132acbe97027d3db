package domain

import "errors"

// Domain errors represent error conditions in the monitor domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running session.
	ErrAlreadyRunning = errors.New("monitor: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped session.
	ErrNotRunning = errors.New("monitor: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("monitor: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("monitor: invalid configuration")

	// ErrUnknownFilter is returned when a configured plugin name has no
	// registered filter.
	ErrUnknownFilter = errors.New("monitor: unknown filter plugin")

	// ErrTransportClosed is returned by reads and writes on a closed transport.
	ErrTransportClosed = errors.New("monitor: transport closed")
)
