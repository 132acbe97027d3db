package monitor

import "context"

// Plugin extends a Monitor with lifecycle hooks. Plugins observe or
// support the session; line rendering belongs to LineFilter instead.
type Plugin interface {
	// Name identifies the plugin in logs and error messages.
	Name() string

	// Initialize is called during Start, in registration order, with the
	// effective session settings. The context is canceled when the
	// session ends. Returning an error aborts the start.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called during Stop, in reverse registration order.
	Shutdown(ctx context.Context) error
}

// PluginConfig carries the effective session settings to
// Plugin.Initialize.
type PluginConfig struct {
	// Port and BaudRate are the configured serial parameters.
	Port     string
	BaudRate int

	// ELF is the firmware symbol file path, empty when not configured.
	ELF string

	// DumpFile is the capture path, empty when not configured.
	DumpFile string

	// Extra carries the session's free-form key/value settings.
	Extra ExtraArgs

	// Resolver is the session's address resolver. Nil when no ELF is
	// configured and none was injected.
	Resolver Resolver

	Logger Logger
}

// BasePlugin provides no-op defaults for Plugin methods. Embed it and
// override what the plugin needs.
type BasePlugin struct{}

// Name identifies the plugin; embedders should override it.
func (BasePlugin) Name() string { return "plugin" }

// Initialize is a no-op.
func (BasePlugin) Initialize(ctx context.Context, cfg PluginConfig) error { return nil }

// Shutdown is a no-op.
func (BasePlugin) Shutdown(ctx context.Context) error { return nil }
