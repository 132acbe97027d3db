package monitor

import (
	"fmt"

	"github.com/jwolf02/Monitor/internal/adapters/addr2line"
	"github.com/jwolf02/Monitor/internal/domain"
)

// DefaultBaudRate is the rate ESP32 dev kits ship with.
const DefaultBaudRate = 115200

// Config holds the session configuration for a Monitor.
type Config struct {
	// Port is the serial device path, e.g. /dev/ttyUSB0. Required unless
	// a transport is injected via WithTransport.
	Port string

	// BaudRate is the serial line rate. Defaults to DefaultBaudRate.
	BaudRate int

	// DumpFile, when set, captures every observed line to this path,
	// including lines claimed by filters. The file is truncated at
	// session start.
	DumpFile string

	// ELF is the firmware symbol file used to decode crash backtraces.
	// Optional; without it backtraces render raw.
	ELF string

	// Interactive enables the line-edited console. Requires a terminal
	// on stdin.
	Interactive bool

	// Plugins names the line filters to activate, in chain order. Names
	// resolve against the filter registry; importing a plugin package
	// such as plugins/esp32 registers its name.
	Plugins []string

	// ExtraArgs carries free-form key/value settings through to filters.
	ExtraArgs map[string]string

	// Addr2line overrides the symbolizer binary used for backtrace
	// decoding. Defaults to the xtensa-esp32-elf toolchain's addr2line.
	Addr2line string
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.Addr2line == "" {
		c.Addr2line = addr2line.DefaultTool
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate must be positive, got %d",
			domain.ErrInvalidConfig, c.BaudRate)
	}
	for _, name := range c.Plugins {
		if name == "" {
			return fmt.Errorf("%w: empty filter name in plugins list",
				domain.ErrInvalidConfig)
		}
	}
	return nil
}
