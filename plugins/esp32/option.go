package esp32

import monitor "github.com/jwolf02/Monitor"

// WithCrashDecoder returns a monitor Option that appends this filter to
// the end of the chain, equivalent to listing "esp32" in Config.Plugins.
//
// Usage:
//
//	m, err := monitor.New(cfg, esp32.WithCrashDecoder())
func WithCrashDecoder() monitor.Option {
	return monitor.WithFilterName(FilterName)
}
