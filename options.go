package monitor

import (
	"io"
	"os"

	"github.com/jwolf02/Monitor/internal/domain"
	"github.com/jwolf02/Monitor/internal/ports"
	"github.com/jwolf02/Monitor/pkg/log"
)

// Re-export the types embedders implement or receive, so importing the
// internal packages is never necessary.
type (
	// Logger is the structured logging interface from pkg/log.
	Logger = log.Logger

	// LogField is the key/value pair Logger implementations receive.
	LogField = log.Field

	// Transport is the byte-stream link to the device.
	Transport = ports.Transport

	// LineFilter classifies and renders device lines.
	LineFilter = ports.LineFilter

	// Resolver maps crash addresses to source locations.
	Resolver = ports.Resolver

	// ExtraArgs carries free-form key/value settings into filters.
	ExtraArgs = domain.ExtraArgs
)

// Option configures optional behavior of a Monitor.
type Option func(*options)

// options holds the optional configuration for a Monitor instance.
type options struct {
	logger      log.Logger
	out         io.Writer
	transport   ports.Transport
	resolver    ports.Resolver
	filters     []ports.LineFilter
	filterNames []string
	plugins     []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		out:    os.Stdout,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, logging is disabled.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithOutput redirects rendered device lines and the interactive prompt.
// Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithTransport injects a pre-opened transport instead of opening the
// configured serial port. The monitor takes ownership and closes it when
// the session ends.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithResolver injects a custom address resolver for backtrace decoding.
// If not provided and Config.ELF is set, an addr2line-backed resolver is
// created automatically.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithFilter appends a pre-built filter to the end of the chain, after
// the filters named in Config.Plugins.
func WithFilter(f LineFilter) Option {
	return func(o *options) {
		o.filters = append(o.filters, f)
	}
}

// WithFilterName appends a registered filter by name, after the filters
// named in Config.Plugins. Plugin packages wrap this in their own option
// helpers.
func WithFilterName(name string) Option {
	return func(o *options) {
		o.filterNames = append(o.filterNames, name)
	}
}

// WithPlugin registers a lifecycle plugin. Plugins are initialized on
// Start in registration order and shut down in reverse order on Stop.
func WithPlugin(p Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, p)
	}
}
