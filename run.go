package monitor

import (
	"context"
	"time"

	"github.com/jwolf02/Monitor/internal/app"
)

// Run creates a Monitor for cfg, starts it, and blocks until the session
// ends or ctx is cancelled. The monitor is stopped before Run returns, and
// the returned error is whatever terminated the session, if anything did.
//
// Run is a convenience wrapper around [New], [Monitor.Start] and
// [Monitor.Stop] for applications that need no mid-session control:
//
//	cfg := monitor.Config{Port: "/dev/ttyUSB0", BaudRate: 115200}
//	if err := monitor.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	m, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := m.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(app.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := m.Stop(); err != nil {
				return err
			}
			return m.Err()
		case <-ticker.C:
			switch m.Status() {
			case StateStopped, StateCrashed:
				if err := m.Stop(); err != nil {
					return err
				}
				return m.Err()
			}
		}
	}
}
