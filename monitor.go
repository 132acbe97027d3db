package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jwolf02/Monitor/internal/adapters/addr2line"
	"github.com/jwolf02/Monitor/internal/adapters/fs"
	"github.com/jwolf02/Monitor/internal/adapters/rawterm"
	"github.com/jwolf02/Monitor/internal/adapters/serialport"
	"github.com/jwolf02/Monitor/internal/app"
	"github.com/jwolf02/Monitor/internal/console"
	"github.com/jwolf02/Monitor/internal/domain"
	"github.com/jwolf02/Monitor/internal/ports"
	"github.com/jwolf02/Monitor/pkg/log"
)

// Monitor is an embeddable serial monitor session. Use New to create an
// instance, then Start to attach to the device.
type Monitor struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	chain     *app.Chain
	extra     domain.ExtraArgs
	resolver  ports.Resolver
	logger    log.Logger
	out       io.Writer
	plugins   []Plugin

	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
	err           error
	pluginsActive bool
}

// New creates a Monitor with the given configuration. The instance is
// created in StateStopped; call Start to attach to the device. Filter
// names in cfg.Plugins are resolved against the registry here, so an
// unknown name fails fast with ErrUnknownFilter.
func New(cfg Config, opts ...Option) (*Monitor, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Validate module version compatibility
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Port == "" && o.transport == nil {
		return nil, fmt.Errorf("%w: port is required", domain.ErrInvalidConfig)
	}
	if cfg.Interactive && !rawterm.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("%w: interactive mode requires a terminal on stdin",
			domain.ErrInvalidConfig)
	}

	logger := o.logger

	// Filters conventionally look up the symbol file under "elf". The key
	// and Config.ELF mirror each other: a configured ELF is seeded into
	// the map unless the caller already set the key, and a key set
	// without Config.ELF fills the field.
	extra := domain.ExtraArgs(cfg.ExtraArgs).Clone()
	if cfg.ELF != "" {
		if _, ok := extra["elf"]; !ok {
			extra["elf"] = cfg.ELF
		}
	}
	if cfg.ELF == "" {
		cfg.ELF = extra["elf"]
	}

	resolver := o.resolver
	if resolver == nil && cfg.ELF != "" {
		resolver = addr2line.New(addr2line.Config{
			Tool: cfg.Addr2line,
			ELF:  cfg.ELF,
		}, logger)
	}

	fctx := FilterContext{
		ELF:      cfg.ELF,
		Out:      o.out,
		Extra:    extra,
		Resolver: resolver,
		Logger:   logger,
	}
	names := make([]string, 0, len(cfg.Plugins)+len(o.filterNames))
	names = append(names, cfg.Plugins...)
	names = append(names, o.filterNames...)

	filters := make([]ports.LineFilter, 0, len(names)+len(o.filters))
	for _, name := range names {
		f, err := newRegisteredFilter(name, fctx)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	filters = append(filters, o.filters...)

	return &Monitor{
		config:    cfg,
		opts:      o,
		lifecycle: app.NewLifecycle(logger),
		chain:     app.NewChain(filters),
		extra:     extra,
		resolver:  resolver,
		logger:    logger,
		out:       o.out,
		plugins:   o.plugins,
	}, nil
}

// Start attaches to the device and begins the session loop in the
// background. It returns immediately after the loop goroutine is
// launched, or an error if the monitor is already running, the port
// cannot be opened, the dump file cannot be created, or a plugin fails
// to initialize. The provided context bounds the session lifetime.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := m.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}
	m.err = nil

	transport := m.opts.transport
	if transport == nil {
		port, err := serialport.Open(serialport.Config{
			Device:   m.config.Port,
			BaudRate: m.config.BaudRate,
		})
		if err != nil {
			err = fmt.Errorf("failed to open serial port '%s': %w", m.config.Port, err)
			return m.failStart(err, nil, nil)
		}
		transport = port
	}

	var sink ports.LineSink
	if m.config.DumpFile != "" {
		dump, err := fs.OpenDumpFile(m.config.DumpFile)
		if err != nil {
			return m.failStart(err, transport, nil)
		}
		sink = dump
		m.logger.Info("dump file opened", log.String("path", m.config.DumpFile))
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.ctx = runCtx
	m.cancel = cancel
	m.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		Port:     m.config.Port,
		BaudRate: m.config.BaudRate,
		ELF:      m.config.ELF,
		DumpFile: m.config.DumpFile,
		Extra:    m.extra,
		Resolver: m.resolver,
		Logger:   m.logger,
	}
	for _, p := range m.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			m.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			return m.failStart(fmt.Errorf("plugin %s: %w", p.Name(), err), transport, sink)
		}
		m.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}
	m.pluginsActive = len(m.plugins) > 0

	dispatcher := app.NewDispatcher(m.chain, sink, m.out, m.extra)

	m.lifecycle.AddWorker()
	go m.run(runCtx, transport, sink, dispatcher)

	m.logger.Info("monitor started",
		log.String("port", m.config.Port),
		log.Int("baudrate", m.config.BaudRate),
		log.Bool("interactive", m.config.Interactive))
	return nil
}

// failStart records a startup failure, releases whatever was already
// opened, and leaves the monitor in StateCrashed. Callers hold m.mu.
func (m *Monitor) failStart(err error, transport ports.Transport, sink ports.LineSink) error {
	if sink != nil {
		_ = sink.Close()
	}
	if transport != nil {
		_ = transport.Close()
	}
	m.err = err
	_ = m.lifecycle.TransitionTo(app.StateCrashed, err.Error())
	return err
}

// run executes one session until it ends, then releases the device and
// records how it ended.
func (m *Monitor) run(ctx context.Context, transport ports.Transport, sink ports.LineSink, dispatcher *app.Dispatcher) {
	defer m.lifecycle.WorkerDone()

	if err := m.lifecycle.TransitionTo(app.StateRunning, "session loop starting"); err != nil {
		// Stop raced with startup; nothing to run.
		m.closeSession(transport, sink)
		return
	}

	var err error
	if m.config.Interactive {
		err = m.runInteractive(ctx, transport, dispatcher)
	} else {
		err = app.NewSession(transport, dispatcher, m.logger).Run(ctx)
	}

	m.closeSession(transport, sink)

	if err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Error("session terminated", log.Err(err))
		m.setErr(err)
		_ = m.lifecycle.TransitionTo(app.StateCrashed, err.Error())
	}
}

// runInteractive couples the pump goroutine with the console loop. Either
// side stopping cancels the other.
func (m *Monitor) runInteractive(ctx context.Context, transport ports.Transport, dispatcher *app.Dispatcher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := app.NewLineQueue()
	pump := app.NewPump(transport, queue, m.logger)

	m.lifecycle.AddWorker()
	go func() {
		defer m.lifecycle.WorkerDone()
		_ = pump.Run(ctx)
		cancel()
	}()

	err := console.RunInteractive(ctx, console.Config{
		Transport:  transport,
		Queue:      queue,
		Dispatcher: dispatcher,
		Out:        m.out,
		Logger:     m.logger,
	})

	cancel()
	<-pump.Done()

	// A transport failure surfaces through the pump; prefer it over the
	// cancellation the console observed.
	if perr := pump.Err(); perr != nil && !errors.Is(perr, context.Canceled) {
		return fmt.Errorf("transport read: %w", perr)
	}
	return err
}

// closeSession releases the dump sink and the transport.
func (m *Monitor) closeSession(transport ports.Transport, sink ports.LineSink) {
	if sink != nil {
		if err := sink.Close(); err != nil {
			m.logger.Warn("dump file close failed", log.Err(err))
		}
	}
	if err := transport.Close(); err != nil {
		m.logger.Warn("transport close failed", log.Err(err))
	}
}

// Stop gracefully shuts down the session: cancels the loops, waits up to
// app.ShutdownTimeout for them, and shuts plugins down in reverse order.
// Stopping an already stopped or crashed monitor only performs the
// outstanding plugin shutdown and returns nil, so Stop is safe to call
// from both the signal path and the crash path.
func (m *Monitor) Stop() error {
	m.mu.Lock()

	switch m.lifecycle.State() {
	case app.StateStopped:
		m.mu.Unlock()
		return nil
	case app.StateCrashed:
		m.mu.Unlock()
		m.shutdownPlugins()
		return nil
	}

	if err := m.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	err := m.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	m.shutdownPlugins()

	if err != nil {
		_ = m.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = m.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// shutdownPlugins shuts plugins down in reverse registration order, once
// per started session.
func (m *Monitor) shutdownPlugins() {
	m.mu.Lock()
	active := m.pluginsActive
	m.pluginsActive = false
	m.mu.Unlock()
	if !active {
		return
	}

	shutdownCtx := context.Background()
	for i := len(m.plugins) - 1; i >= 0; i-- {
		p := m.plugins[i]
		if err := p.Shutdown(shutdownCtx); err != nil {
			m.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			m.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (m *Monitor) Status() State {
	return convertState(m.lifecycle.State())
}

// Err returns the error that terminated the last session, or nil. Valid
// once Status reports StateCrashed; cleared by the next Start.
func (m *Monitor) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// setErr records the session's fatal error.
func (m *Monitor) setErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}
