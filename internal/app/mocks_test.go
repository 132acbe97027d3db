package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jwolf02/Monitor/internal/domain"
)

// fakeTransport replays a script of chunks, one per ReadAvailable call,
// then keeps returning empty reads. Safe for use from the pump goroutine.
type fakeTransport struct {
	mu     sync.Mutex
	chunks [][]byte
	err    error // returned once the script is exhausted, if set
	wrote  []byte
	closed bool
}

func (f *fakeTransport) ReadAvailable() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.chunks) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		return nil, nil
	}
	chunk := f.chunks[0]
	f.chunks = f.chunks[1:]
	return chunk, nil
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wrote = append(f.wrote, p...)
	return len(p), nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.wrote)
}

// prefixFilter claims every line starting with prefix and records it.
type prefixFilter struct {
	name    string
	prefix  string
	claimed []string
}

func (p *prefixFilter) Name() string { return p.name }

func (p *prefixFilter) TryClaim(line string, extra domain.ExtraArgs) (bool, error) {
	if p.prefix != "" && !hasPrefix(line, p.prefix) {
		return false, nil
	}
	p.claimed = append(p.claimed, line)
	return true, nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// errFilter fails every line it is offered.
type errFilter struct{ name string }

func (e *errFilter) Name() string { return e.name }

func (e *errFilter) TryClaim(line string, extra domain.ExtraArgs) (bool, error) {
	return false, errors.New("boom")
}

// captureSink records every line written to it.
type captureSink struct {
	lines  []string
	closed bool
	err    error // returned by WriteLine when set
}

func (c *captureSink) WriteLine(line string) error {
	if c.err != nil {
		return c.err
	}
	c.lines = append(c.lines, line)
	return nil
}

func (c *captureSink) Close() error {
	c.closed = true
	return nil
}

// safeBuffer is an io.Writer usable from multiple goroutines in tests.
type safeBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

// waitUntil polls cond until it holds or the deadline expires.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
