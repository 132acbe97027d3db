// Package addr2line resolves program counters to source locations by
// shelling out to an addr2line-style tool from the device's cross
// toolchain.
package addr2line

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/jwolf02/Monitor/pkg/log"
)

// DefaultTool is the symbolizer binary used when no override is configured.
const DefaultTool = "xtensa-esp32-elf-addr2line"

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 10 * time.Second

// Runner abstracts process execution so tests can stub the tool.
type Runner interface {
	// Run executes name with args and returns its stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// OSRunner executes commands on the host.
type OSRunner struct{}

// Run implements Runner via os/exec.
func (OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Config holds resolver settings.
type Config struct {
	// Tool is the symbolizer binary to invoke. Empty selects DefaultTool.
	Tool string

	// ELF is the symbol file handed to the tool. Required.
	ELF string

	// Timeout bounds one invocation. Zero or negative selects
	// DefaultTimeout.
	Timeout time.Duration
}

// Resolver implements ports.Resolver by running the configured tool once
// per address and memoizing successful resolutions. Crash dumps of the
// same firmware repeat addresses, so the cache saves a process spawn per
// recurring frame. Invalidate drops the cache when the symbol file is
// rewritten.
type Resolver struct {
	tool    string
	elf     string
	timeout time.Duration
	runner  Runner
	logger  log.Logger

	mu    sync.Mutex
	cache map[string]string
}

// New creates a Resolver that executes the tool on the host.
func New(cfg Config, logger log.Logger) *Resolver {
	return NewWithRunner(cfg, OSRunner{}, logger)
}

// NewWithRunner creates a Resolver with a custom process runner.
func NewWithRunner(cfg Config, runner Runner, logger log.Logger) *Resolver {
	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Resolver{
		tool:    cfg.Tool,
		elf:     cfg.ELF,
		timeout: cfg.Timeout,
		runner:  runner,
		logger:  logger,
		cache:   make(map[string]string),
	}
}

// Resolve maps one 0x-prefixed address to its source location. The tool
// is invoked as `<tool> -pfiaC -e <elf> <address>`; its stdout, stripped
// of the trailing newline, is the resolution text. Inlined frames keep
// their interior newlines.
func (r *Resolver) Resolve(ctx context.Context, address string) (string, error) {
	r.mu.Lock()
	hit, ok := r.cache[address]
	r.mu.Unlock()
	if ok {
		return hit, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	out, err := r.runner.Run(ctx, r.tool, "-pfiaC", "-e", r.elf, address)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", r.tool, address, err)
	}
	text := strings.TrimRight(string(out), "\n")

	r.mu.Lock()
	r.cache[address] = text
	r.mu.Unlock()

	r.logger.Debug("address resolved",
		log.String("address", address),
		log.Duration("took", time.Since(start)))
	return text, nil
}

// Invalidate drops all memoized resolutions. Called when the symbol file
// changes on disk.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	n := len(r.cache)
	r.cache = make(map[string]string)
	r.mu.Unlock()

	if n > 0 {
		r.logger.Debug("resolution cache invalidated", log.Int("entries", n))
	}
}
