package addr2line

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

// fakeRunner records invocations and replays canned outputs per address.
type fakeRunner struct {
	outputs map[string]string // keyed by the trailing address argument
	err     error
	calls   [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, f.err
	}
	addr := args[len(args)-1]
	return []byte(f.outputs[addr]), nil
}

func TestResolver_Resolve_InvokesTool(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"0x400d1b2f": "0x400d1b2f: app_main at /fw/main/main.c:42\n",
	}}
	r := NewWithRunner(Config{ELF: "/fw/app.elf"}, runner, nil)

	text, err := r.Resolve(context.Background(), "0x400d1b2f")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := "0x400d1b2f: app_main at /fw/main/main.c:42"; text != want {
		t.Errorf("Resolve() = %q, want %q", text, want)
	}

	want := []string{DefaultTool, "-pfiaC", "-e", "/fw/app.elf", "0x400d1b2f"}
	if len(runner.calls) != 1 || !reflect.DeepEqual(runner.calls[0], want) {
		t.Errorf("tool invocation = %v, want %v", runner.calls, want)
	}
}

func TestResolver_Resolve_ToolOverride(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"0x1": "ok\n"}}
	r := NewWithRunner(Config{Tool: "riscv32-esp-elf-addr2line", ELF: "/fw/app.elf"}, runner, nil)

	if _, err := r.Resolve(context.Background(), "0x1"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := runner.calls[0][0]; got != "riscv32-esp-elf-addr2line" {
		t.Errorf("tool = %q, want override", got)
	}
}

func TestResolver_Resolve_Memoizes(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"0x2": "cached\n"}}
	r := NewWithRunner(Config{ELF: "/fw/app.elf"}, runner, nil)

	for i := 0; i < 3; i++ {
		text, err := r.Resolve(context.Background(), "0x2")
		if err != nil {
			t.Fatalf("Resolve() #%d error = %v", i, err)
		}
		if text != "cached" {
			t.Errorf("Resolve() #%d = %q, want %q", i, text, "cached")
		}
	}
	if len(runner.calls) != 1 {
		t.Errorf("tool invoked %d times, want 1", len(runner.calls))
	}
}

func TestResolver_Invalidate_DropsCache(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"0x3": "v1\n"}}
	r := NewWithRunner(Config{ELF: "/fw/app.elf"}, runner, nil)

	if _, err := r.Resolve(context.Background(), "0x3"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	r.Invalidate()
	runner.outputs["0x3"] = "v2\n"

	text, err := r.Resolve(context.Background(), "0x3")
	if err != nil {
		t.Fatalf("Resolve() after Invalidate error = %v", err)
	}
	if text != "v2" {
		t.Errorf("Resolve() = %q, want fresh %q", text, "v2")
	}
	if len(runner.calls) != 2 {
		t.Errorf("tool invoked %d times, want 2", len(runner.calls))
	}
}

func TestResolver_Resolve_ToolFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exec: not found")}
	r := NewWithRunner(Config{ELF: "/fw/app.elf"}, runner, nil)

	_, err := r.Resolve(context.Background(), "0x4")
	if err == nil {
		t.Fatal("Resolve() error = nil, want tool failure")
	}
	if !strings.Contains(err.Error(), "0x4") {
		t.Errorf("error %q does not name the address", err)
	}

	// Failures must not be cached.
	runner.err = nil
	runner.outputs = map[string]string{"0x4": "recovered\n"}
	text, err := r.Resolve(context.Background(), "0x4")
	if err != nil {
		t.Fatalf("Resolve() retry error = %v", err)
	}
	if text != "recovered" {
		t.Errorf("Resolve() retry = %q, want %q", text, "recovered")
	}
}

func TestResolver_Resolve_KeepsInlinedFrames(t *testing.T) {
	out := "0x5: inner at /fw/a.c:1\n (inlined by) outer at /fw/b.c:9\n"
	runner := &fakeRunner{outputs: map[string]string{"0x5": out}}
	r := NewWithRunner(Config{ELF: "/fw/app.elf"}, runner, nil)

	text, err := r.Resolve(context.Background(), "0x5")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := strings.TrimRight(out, "\n"); text != want {
		t.Errorf("Resolve() = %q, want interior newline kept", text)
	}
}

func TestResolver_Resolve_BoundsInvocation(t *testing.T) {
	var deadline time.Time
	runner := runnerFunc(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		deadline, _ = ctx.Deadline()
		return []byte("ok\n"), nil
	})
	r := NewWithRunner(Config{ELF: "/fw/app.elf", Timeout: time.Second}, runner, nil)

	if _, err := r.Resolve(context.Background(), "0x6"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if deadline.IsZero() {
		t.Error("tool ran without a deadline")
	}
}

// runnerFunc adapts a func to the Runner interface.
type runnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func (f runnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}
