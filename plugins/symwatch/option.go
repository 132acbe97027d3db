package symwatch

import monitor "github.com/jwolf02/Monitor"

// WithSymbolWatcher returns a monitor Option that keeps the backtrace
// resolver in sync with firmware rebuilds.
//
// Usage:
//
//	m, err := monitor.New(cfg,
//	    symwatch.WithSymbolWatcher(symwatch.Config{
//	        DebounceDelay: 500 * time.Millisecond,
//	    }),
//	)
func WithSymbolWatcher(cfg Config) monitor.Option {
	plugin := New(cfg)
	return monitor.WithPlugin(plugin)
}

// WithDefaultSymbolWatcher returns a monitor Option that enables symbol
// watching with default settings (500ms debounce).
//
// Usage:
//
//	m, err := monitor.New(cfg, symwatch.WithDefaultSymbolWatcher())
func WithDefaultSymbolWatcher() monitor.Option {
	return WithSymbolWatcher(DefaultConfig())
}
