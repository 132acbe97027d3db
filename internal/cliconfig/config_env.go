package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (MONITOR_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", os.Getenv("MONITOR_PORT"), &cfg.Port)
	s.setString("file", os.Getenv("MONITOR_FILE"), &cfg.File)
	s.setString("elf", os.Getenv("MONITOR_ELF"), &cfg.ELF)
	s.setString("addr2line", os.Getenv("MONITOR_ADDR2LINE"), &cfg.Addr2line)

	if err := s.setIntFromString("baudrate", os.Getenv("MONITOR_BAUDRATE"), &cfg.BaudRate); err != nil {
		return err
	}

	s.setStringSliceFromString("plugins", os.Getenv("MONITOR_PLUGINS"), &cfg.Plugins)

	s.setBoolFromString("interactive", os.Getenv("MONITOR_INTERACTIVE"), &cfg.Interactive)
	s.setBoolFromString("verbose", os.Getenv("MONITOR_VERBOSE"), &cfg.Verbose)

	return nil
}
