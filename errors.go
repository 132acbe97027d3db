package monitor

import "github.com/jwolf02/Monitor/internal/domain"

// Error sentinels returned by the public API. Check them with errors.Is;
// returned errors may wrap additional context.
var (
	// ErrAlreadyRunning is returned by Start on a running monitor.
	ErrAlreadyRunning = domain.ErrAlreadyRunning

	// ErrNotRunning is returned by Stop while a stop is already in
	// progress.
	ErrNotRunning = domain.ErrNotRunning

	// ErrShutdownTimeout is returned by Stop when the session loops do
	// not exit within app.ShutdownTimeout.
	ErrShutdownTimeout = domain.ErrShutdownTimeout

	// ErrInvalidConfig is returned by New and Config.Validate for
	// configuration mistakes.
	ErrInvalidConfig = domain.ErrInvalidConfig

	// ErrUnknownFilter is returned by New when a name in Config.Plugins
	// has no registered filter.
	ErrUnknownFilter = domain.ErrUnknownFilter

	// ErrTransportClosed is returned by transport reads and writes after
	// Close.
	ErrTransportClosed = domain.ErrTransportClosed
)
