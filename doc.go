// Package monitor provides an embeddable interactive serial monitor for
// embedded development boards, with first-class support for decoding
// ESP32 crash backtraces.
//
// Monitor attaches to a serial device, frames its output into lines, and
// runs each line through a chain of filters before printing. Filters can
// claim lines and render them specially; the bundled plugins/esp32 filter
// highlights Guru Meditation faults and symbolizes backtrace addresses
// with the firmware's ELF file. It can be used as a standalone CLI
// application or embedded as a library in other Go programs.
//
// # Basic Usage
//
// To embed the monitor in your application:
//
//	cfg := monitor.Config{
//	    Port:     "/dev/ttyUSB0",
//	    BaudRate: 115200,
//	    ELF:      "build/firmware.elf",
//	    Plugins:  []string{"esp32"},
//	}
//
//	m, err := monitor.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := m.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := m.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Configuration
//
// Create a [Config] with at minimum Port. All other fields have sensible
// defaults set via [Config.SetDefaults]. A [Config.DumpFile] captures
// every observed line, including lines claimed by filters, and
// [Config.Interactive] adds a line-edited prompt for sending commands to
// the device.
//
// # Filters and Plugins
//
// Line filters are named and resolved from a registry; importing a
// filter package registers its name:
//
//	import _ "github.com/jwolf02/Monitor/plugins/esp32"
//
// Lifecycle plugins hook into session start and stop. The bundled
// symwatch plugin re-reads symbols when the firmware ELF is rebuilt:
//
//	import "github.com/jwolf02/Monitor/plugins/symwatch"
//
//	m, err := monitor.New(cfg,
//	    symwatch.WithSymbolWatcher(symwatch.DefaultConfig()),
//	)
//
// # Dependency Injection
//
// For testing, inject custom implementations of external dependencies:
//
//	m, err := monitor.New(cfg,
//	    monitor.WithTransport(fakeDevice),
//	    monitor.WithLogger(customLogger),
//	)
//
// # Lifecycle States
//
// A Monitor is in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. Use
// [Monitor.Status] to query the current state and [Monitor.Err] for the
// cause of a crash.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// Use [ModuleVersions] to get versions of all sub-modules and [CompatibilityMatrix]
// to check minimum compatible versions. See version.go for details.
package monitor
