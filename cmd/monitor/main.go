package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	monitor "github.com/jwolf02/Monitor"
	"github.com/jwolf02/Monitor/internal/cliconfig"
	logAdapter "github.com/jwolf02/Monitor/pkg/log"
	_ "github.com/jwolf02/Monitor/plugins/esp32"
	"github.com/jwolf02/Monitor/plugins/symwatch"
)

const helpBanner = `
 __  __   ___   _   _  ___  _____   ___   ____
|  \/  | / _ \ | \ | ||_ _||_   _| / _ \ |  _ \
| |\/| || | | ||  \| | | |   | |  | | | || |_) |
| |  | || |_| || |\  | | |   | |  | |_| ||  _ <
|_|  |_| \___/ |_| \_||___|  |_|   \___/ |_| \_\
`

const helpDescription = `
Watch a serial device line by line, with optional crash decoding for ESP32 firmware.

Highlights:
  - Prints every line the device emits and can mirror the session to a file.
  - Interactive mode sends what you type to the device without garbling output.
  - The esp32 filter paints fatal errors red and resolves backtrace addresses
    through addr2line when an ELF image is given.
  - Configure via flags, MONITOR_* environment variables, or a config file.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  monitor --port /dev/ttyUSB0
  monitor -p /dev/ttyUSB0 -b 921600 -i --plugins esp32 -e build/app.elf
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "monitor",
		Short:   "Interactive serial monitor with pluggable line filters",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		// Unknown flags are plugin arguments, collected separately below.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.monitor/config.toml), then apply flag overrides
			// Determine config path
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (MONITOR_*)
			// These override file config but are overridden by flags (checked via changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Verbose {
				log = log.Level(zerolog.DebugLevel)
			} else {
				log = log.Level(zerolog.InfoLevel)
			}
			log.Debug().Interface("config", cfg).Msg("configuration")

			// Flags the root command does not own are handed to the filters.
			extra := cliconfig.ParseExtraArgs(os.Args[1:], func(name string) bool {
				return cmd.Flags().Lookup(name) != nil
			})

			libCfg := monitor.Config{
				Port:        cfg.Port,
				BaudRate:    cfg.BaudRate,
				DumpFile:    cfg.File,
				ELF:         cfg.ELF,
				Interactive: cfg.Interactive,
				Plugins:     cfg.Plugins,
				ExtraArgs:   extra,
				Addr2line:   cfg.Addr2line,
			}

			// Create zerolog adapter for the library
			zerologAdapter := logAdapter.NewZerologAdapterWithLogger(log)

			// The symbol watcher disables itself when no ELF image is
			// configured, so it is always enabled here.
			m, err := monitor.New(libCfg,
				monitor.WithLogger(zerologAdapter),
				symwatch.WithDefaultSymbolWatcher(),
			)
			if err != nil {
				return fmt.Errorf("create monitor: %w", err)
			}

			// Setup signal handling for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := m.Start(ctx); err != nil {
				return fmt.Errorf("start monitor: %w", err)
			}

			// Create done channel to detect completion
			doneCh := make(chan struct{})
			go func() {
				// Poll for completion (device gone or session crashed)
				ticker := time.NewTicker(100 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						status := m.Status()
						if status == monitor.StateStopped || status == monitor.StateCrashed {
							close(doneCh)
							return
						}
					}
				}
			}()

			// Wait for signal or completion
			select {
			case <-sigCh:
				log.Info().Msg("received signal, stopping...")
			case <-doneCh:
			}

			// Graceful shutdown
			if err := m.Stop(); err != nil {
				return fmt.Errorf("stop monitor: %w", err)
			}
			if err := m.Err(); err != nil {
				return fmt.Errorf("terminated: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.monitor/config.toml)")
	root.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "serial port device (e.g. /dev/ttyUSB0)")
	root.Flags().IntVarP(&cfg.BaudRate, "baudrate", "b", cfg.BaudRate, "serial baud rate")

	root.Flags().StringVarP(&cfg.File, "file", "f", cfg.File, "mirror received lines to this file")
	root.Flags().StringVarP(&cfg.ELF, "elf", "e", cfg.ELF, "ELF image for crash address resolution")

	root.Flags().BoolVarP(&cfg.Interactive, "interactive", "i", cfg.Interactive, "send typed lines to the device")
	root.Flags().StringSliceVar(&cfg.Plugins, "plugins", cfg.Plugins, "line filters to enable (e.g. esp32)")

	root.Flags().StringVar(&cfg.Addr2line, "addr2line", cfg.Addr2line, "addr2line binary used for crash decoding")
	if err := root.Flags().MarkHidden("addr2line"); err != nil {
		log.Info().Err(err).Msg("failed to hide addr2line flag")
	}
	root.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("monitor")
		os.Exit(1)
	}
}
