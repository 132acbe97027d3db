package symwatch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	monitor "github.com/jwolf02/Monitor"
	"github.com/jwolf02/Monitor/pkg/log"
)

// cachingResolver counts invalidations.
type cachingResolver struct {
	mu            sync.Mutex
	invalidations int
}

func (c *cachingResolver) Resolve(ctx context.Context, address string) (string, error) {
	return address, nil
}

func (c *cachingResolver) Invalidate() {
	c.mu.Lock()
	c.invalidations++
	c.mu.Unlock()
}

func (c *cachingResolver) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}

// plainResolver has no cache to drop.
type plainResolver struct{}

func (plainResolver) Resolve(ctx context.Context, address string) (string, error) {
	return address, nil
}

func writeELF(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("\x7fELF fake"), 0o644); err != nil {
		t.Fatalf("write elf: %v", err)
	}
}

func waitForCount(t *testing.T, resolver *cachingResolver, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if resolver.count() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("invalidations = %d, want at least %d", resolver.count(), want)
}

func TestPlugin_Name(t *testing.T) {
	plugin := New(DefaultConfig())
	if plugin.Name() != "symwatch" {
		t.Errorf("Name() = %v, want symwatch", plugin.Name())
	}
}

func TestPlugin_InvalidatesOnRewrite(t *testing.T) {
	elf := filepath.Join(t.TempDir(), "app.elf")
	writeELF(t, elf)

	resolver := &cachingResolver{}
	plugin := New(Config{DebounceDelay: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := plugin.Initialize(ctx, monitor.PluginConfig{
		ELF:      elf,
		Resolver: resolver,
		Logger:   log.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// Give the watcher a moment to arm before touching the file.
	time.Sleep(50 * time.Millisecond)
	writeELF(t, elf)

	waitForCount(t, resolver, 1)

	if err := plugin.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestPlugin_InvalidatesOnReplace(t *testing.T) {
	dir := t.TempDir()
	elf := filepath.Join(dir, "app.elf")
	writeELF(t, elf)

	resolver := &cachingResolver{}
	plugin := New(Config{DebounceDelay: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := plugin.Initialize(ctx, monitor.PluginConfig{
		ELF:      elf,
		Resolver: resolver,
		Logger:   log.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	// Build systems link to a temp file and rename it over the old one.
	next := filepath.Join(dir, "app.elf.tmp")
	writeELF(t, next)
	if err := os.Rename(next, elf); err != nil {
		t.Fatalf("rename: %v", err)
	}

	waitForCount(t, resolver, 1)

	if err := plugin.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestPlugin_DebounceCollapsesBursts(t *testing.T) {
	elf := filepath.Join(t.TempDir(), "app.elf")
	writeELF(t, elf)

	resolver := &cachingResolver{}
	plugin := New(Config{DebounceDelay: 150 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := plugin.Initialize(ctx, monitor.PluginConfig{
		ELF:      elf,
		Resolver: resolver,
		Logger:   log.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 5; i++ {
		writeELF(t, elf)
	}

	waitForCount(t, resolver, 1)
	time.Sleep(300 * time.Millisecond)

	if got := resolver.count(); got != 1 {
		t.Errorf("invalidations = %d, want burst collapsed to 1", got)
	}

	if err := plugin.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestPlugin_DisabledWithoutELF(t *testing.T) {
	resolver := &cachingResolver{}
	plugin := New(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := plugin.Initialize(ctx, monitor.PluginConfig{
		ELF:      "",
		Resolver: resolver,
		Logger:   log.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if got := resolver.count(); got != 0 {
		t.Errorf("invalidations = %d while disabled, want 0", got)
	}

	if err := plugin.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestPlugin_DisabledWithoutCachingResolver(t *testing.T) {
	elf := filepath.Join(t.TempDir(), "app.elf")
	writeELF(t, elf)

	plugin := New(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := plugin.Initialize(ctx, monitor.PluginConfig{
		ELF:      elf,
		Resolver: plainResolver{},
		Logger:   log.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if err := plugin.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
