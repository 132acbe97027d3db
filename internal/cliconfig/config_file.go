package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with TOML tags. Booleans are pointers so an
// absent key can be told apart from an explicit false.
type FileConfig struct {
	Port        string   `toml:"port"`
	BaudRate    int      `toml:"baudrate"`
	File        string   `toml:"file"`
	ELF         string   `toml:"elf"`
	Interactive *bool    `toml:"interactive"`
	Plugins     []string `toml:"plugins"`
	Addr2line   string   `toml:"addr2line"`
	Verbose     *bool    `toml:"verbose"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.monitor/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".monitor", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", fc.Port, &cfg.Port)
	s.setString("file", fc.File, &cfg.File)
	s.setString("elf", fc.ELF, &cfg.ELF)
	s.setString("addr2line", fc.Addr2line, &cfg.Addr2line)

	s.setInt("baudrate", fc.BaudRate, &cfg.BaudRate)

	s.setStringSlice("plugins", fc.Plugins, &cfg.Plugins)

	s.setBool("interactive", fc.Interactive, &cfg.Interactive)
	s.setBool("verbose", fc.Verbose, &cfg.Verbose)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
