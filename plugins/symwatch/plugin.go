// Package symwatch keeps backtrace symbolication fresh across firmware
// rebuilds. It watches the configured ELF file and drops the resolver's
// memoized resolutions once a change settles, so the next backtrace
// decodes against the new binary.
package symwatch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	monitor "github.com/jwolf02/Monitor"
	"github.com/jwolf02/Monitor/pkg/log"
)

// invalidator is the optional capability a caching resolver exposes.
type invalidator interface {
	Invalidate()
}

// Config holds configuration options for the symbol watcher plugin.
type Config struct {
	// DebounceDelay is the quiet period after a file change before the
	// cache is dropped, so a linker writing in bursts invalidates once.
	// Default: 500 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 500 * time.Millisecond,
	}
}

// Plugin implements symbol file watching. It is inert when the session
// has no ELF configured or the resolver does not cache.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration

	elf      string
	logger   monitor.Logger
	resolver invalidator
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// New creates a new symbol watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 500 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "symwatch"
}

// Initialize starts the watcher when the session has both an ELF file
// and a caching resolver; otherwise the plugin stays inert.
func (p *Plugin) Initialize(ctx context.Context, cfg monitor.PluginConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	p.mu.Lock()
	p.elf = cfg.ELF
	p.logger = logger
	p.mu.Unlock()

	if cfg.ELF == "" {
		logger.Warn("Symbol watcher disabled: no ELF file configured")
		return nil
	}
	inv, ok := cfg.Resolver.(invalidator)
	if !ok {
		logger.Warn("Symbol watcher disabled: resolver does not cache")
		return nil
	}
	p.resolver = inv

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	logger.Info("Symbol watcher plugin initialized", log.String("elf", cfg.ELF))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// watchLoop watches the ELF's directory. Build systems replace the file
// rather than rewriting it in place, so watching the file itself would
// lose the watch on the first rebuild.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("Symbol watcher: failed to create watcher", log.Err(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.elf)); err != nil {
		p.logger.Error("Symbol watcher: failed to watch directory",
			log.String("dir", filepath.Dir(p.elf)),
			log.Err(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(p.elf) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceInvalidate(p.debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("Symbol watcher: watcher error", log.Err(err))
		}
	}
}

// debounceInvalidate (re)arms the invalidation timer.
func (p *Plugin) debounceInvalidate(delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(delay, func() {
		p.resolver.Invalidate()
		p.logger.Info("symbol file changed, resolution cache dropped",
			log.String("elf", p.elf))
	})
}
