package esp32

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	monitor "github.com/jwolf02/Monitor"
)

// crashLine mirrors a real device trace: the separator between the first
// frame's stack pointer and the second program counter is lost in
// transit, gluing the two addresses into one 20-character token.
const crashLine = "Backtrace:0x400d1b2f:0x3ffb1b100x400d2c3e:0x3ffb1b30 0x400d3d4f:0x3ffb1b50 "

// fakeResolver resolves from a fixed table and records every lookup.
type fakeResolver struct {
	table map[string]string
	fail  map[string]bool
	calls []string
}

func (f *fakeResolver) Resolve(ctx context.Context, address string) (string, error) {
	f.calls = append(f.calls, address)
	if f.fail[address] {
		return "", errors.New("no symbol")
	}
	text, ok := f.table[address]
	if !ok {
		return "", fmt.Errorf("unexpected address %s", address)
	}
	return text, nil
}

func newTestFilter(resolver monitor.Resolver) (*Filter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	f := New(monitor.FilterContext{Out: out, Resolver: resolver})
	return f, out
}

func TestSplitAddresses(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"a:b c", []string{"a", "b", "c"}},
		{"a::b", []string{"a", "", "b"}},
		{"a ", []string{"a", ""}},
		{"Backtrace", []string{"Backtrace"}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		if got := splitAddresses(tt.line); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitAddresses(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestSplitGluedToken(t *testing.T) {
	in := []string{"Backtrace", "0x400d1b2f", "0x3ffb1b100x400d2c3e", "0x3ffb1b30"}
	want := []string{"Backtrace", "0x400d1b2f", "0x3ffb1b10", "0x400d2c3e", "0x3ffb1b30"}
	if got := splitGluedToken(in); !reflect.DeepEqual(got, want) {
		t.Errorf("splitGluedToken() = %q, want %q", got, want)
	}
}

func TestSplitGluedToken_ShortToken(t *testing.T) {
	in := []string{"Backtrace", "0x1", "0x22", "0x3"}
	want := []string{"Backtrace", "0x1", "0x22", "", "0x3"}
	if got := splitGluedToken(in); !reflect.DeepEqual(got, want) {
		t.Errorf("splitGluedToken() = %q, want %q", got, want)
	}
}

func TestFilter_ClaimsFaultBanner(t *testing.T) {
	f, out := newTestFilter(nil)

	line := "Guru Meditation Error: Core  1 panic'ed (LoadProhibited)"
	claimed, err := f.TryClaim(line, nil)
	if err != nil {
		t.Fatalf("TryClaim() error = %v", err)
	}
	if !claimed {
		t.Fatal("TryClaim() = false, want fault banner claimed")
	}
	if !strings.Contains(out.String(), line) {
		t.Errorf("output %q does not contain the banner", out.String())
	}
}

func TestFilter_DeclinesOrdinaryLines(t *testing.T) {
	f, out := newTestFilter(nil)

	claimed, err := f.TryClaim("I (320) wifi: mode : sta", nil)
	if err != nil {
		t.Fatalf("TryClaim() error = %v", err)
	}
	if claimed {
		t.Error("TryClaim() = true for an ordinary line")
	}
	if out.Len() != 0 {
		t.Errorf("filter wrote %q for a declined line", out.String())
	}
}

func TestFilter_BacktraceRawWithoutResolver(t *testing.T) {
	f, out := newTestFilter(nil)

	claimed, err := f.TryClaim(crashLine, nil)
	if err != nil {
		t.Fatalf("TryClaim() error = %v", err)
	}
	if !claimed {
		t.Fatal("TryClaim() = false, want backtrace claimed")
	}
	if !strings.Contains(out.String(), crashLine) {
		t.Errorf("output %q does not contain the raw trace", out.String())
	}
	if strings.Contains(out.String(), decodeHeader) {
		t.Error("decode header printed without a resolver")
	}
}

func TestFilter_DecodesBacktrace(t *testing.T) {
	resolver := &fakeResolver{table: map[string]string{
		"0x400d1b2f": "0x400d1b2f: panic_abort at /fw/panic.c:18",
		"0x400d2c3e": "0x400d2c3e: app_main at /fw/main.c:42",
		"0x400d3d4f": "0x400d3d4f: main_task at /fw/task.c:7",
	}}
	f, out := newTestFilter(resolver)

	claimed, err := f.TryClaim(crashLine, nil)
	if err != nil {
		t.Fatalf("TryClaim() error = %v", err)
	}
	if !claimed {
		t.Fatal("TryClaim() = false, want backtrace claimed")
	}

	wantCalls := []string{"0x400d1b2f", "0x400d2c3e", "0x400d3d4f"}
	if !reflect.DeepEqual(resolver.calls, wantCalls) {
		t.Errorf("resolved %q, want program counters only %q", resolver.calls, wantCalls)
	}

	rendered := out.String()
	if !strings.Contains(rendered, decodeHeader) {
		t.Error("decode header missing")
	}
	last := -1
	for _, frame := range []string{"panic_abort", "app_main", "main_task"} {
		idx := strings.Index(rendered, frame)
		if idx < 0 {
			t.Fatalf("frame %q missing from %q", frame, rendered)
		}
		if idx < last {
			t.Errorf("frame %q rendered out of order", frame)
		}
		last = idx
	}
}

func TestFilter_ResolutionFailureKeepsTrace(t *testing.T) {
	resolver := &fakeResolver{
		table: map[string]string{
			"0x400d1b2f": "0x400d1b2f: panic_abort at /fw/panic.c:18",
			"0x400d3d4f": "0x400d3d4f: main_task at /fw/task.c:7",
		},
		fail: map[string]bool{"0x400d2c3e": true},
	}
	f, out := newTestFilter(resolver)

	claimed, err := f.TryClaim(crashLine, nil)
	if err != nil {
		t.Fatalf("TryClaim() error = %v, resolution failures must not be fatal", err)
	}
	if !claimed {
		t.Fatal("TryClaim() = false, want backtrace claimed")
	}

	rendered := out.String()
	for _, want := range []string{"panic_abort", "0x400d2c3e", "main_task"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("output %q missing %q", rendered, want)
		}
	}
}

func TestFilter_ShortBacktraceRendersRaw(t *testing.T) {
	resolver := &fakeResolver{}
	f, out := newTestFilter(resolver)

	claimed, err := f.TryClaim("Backtrace corrupted", nil)
	if err != nil {
		t.Fatalf("TryClaim() error = %v", err)
	}
	if !claimed {
		t.Fatal("TryClaim() = false, want claimed")
	}
	if len(resolver.calls) != 0 {
		t.Errorf("resolver invoked %q for an undecodable trace", resolver.calls)
	}
	if !strings.Contains(out.String(), "Backtrace corrupted") {
		t.Errorf("output %q does not contain the raw line", out.String())
	}
}

func TestFilterIsRegistered(t *testing.T) {
	for _, name := range monitor.RegisteredFilters() {
		if name == FilterName {
			return
		}
	}
	t.Fatalf("filter %q not registered", FilterName)
}
