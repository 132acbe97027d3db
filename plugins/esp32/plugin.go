// Package esp32 provides crash diagnostics decoding for ESP32 devices.
// The filter claims Guru Meditation fault banners and backtrace lines,
// highlights them, and symbolizes backtrace addresses to source locations
// when the firmware's ELF file is configured.
package esp32

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	monitor "github.com/jwolf02/Monitor"
	"github.com/jwolf02/Monitor/pkg/log"
)

// FilterName is the name this filter registers under.
const FilterName = "esp32"

const (
	fatalPrefix     = "Guru Meditation Error"
	backtracePrefix = "Backtrace"

	decodeHeader = "Backtrace (most recent call last):"

	// addrWidth is the width of one 0x-prefixed 32-bit address. The
	// device drops the separator between the first frame's stack pointer
	// and the second frame's program counter, so one backtrace token
	// carries two addresses glued at this width.
	addrWidth = 10
)

func init() {
	monitor.RegisterFilter(FilterName, func(fc monitor.FilterContext) (monitor.LineFilter, error) {
		return New(fc), nil
	})
}

// Filter claims ESP32 crash diagnostics. Fault banners render
// highlighted; backtraces are decoded frame by frame when a resolver is
// available and rendered raw otherwise.
type Filter struct {
	out      io.Writer
	resolver monitor.Resolver
	logger   monitor.Logger
	red      *color.Color
}

// New creates the filter from the session's filter context.
func New(fc monitor.FilterContext) *Filter {
	out := fc.Out
	if out == nil {
		out = os.Stdout
	}
	logger := fc.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Filter{
		out:      out,
		resolver: fc.Resolver,
		logger:   logger,
		red:      color.New(color.FgRed),
	}
}

// Name implements monitor.LineFilter.
func (f *Filter) Name() string { return FilterName }

// TryClaim claims fault banners and backtrace lines; everything else
// passes through.
func (f *Filter) TryClaim(line string, extra monitor.ExtraArgs) (bool, error) {
	switch {
	case strings.HasPrefix(line, fatalPrefix):
		return true, f.printRed(line)
	case strings.HasPrefix(line, backtracePrefix):
		if f.resolver == nil {
			return true, f.printRed(line)
		}
		return true, f.decodeBacktrace(line)
	}
	return false, nil
}

// decodeBacktrace renders one backtrace line as resolved source
// locations.
//
// After splitting on single spaces and colons, program counters sit at
// odd indices once the glued token at index 2 is repaired; the even
// indices hold stack pointers and the final token is a line-ending
// artifact, never an address. Addresses that fail to resolve are printed
// raw after a warning, keeping the rest of the trace intact.
func (f *Filter) decodeBacktrace(line string) error {
	tokens := splitAddresses(line)
	if len(tokens) < 3 {
		f.logger.Warn("unrecognized backtrace shape", log.String("line", line))
		return f.printRed(line)
	}
	tokens = splitGluedToken(tokens)

	if err := f.printRed(decodeHeader); err != nil {
		return err
	}
	for i := 1; i < len(tokens)-1; i += 2 {
		addr := tokens[i]
		text, err := f.resolver.Resolve(context.Background(), addr)
		if err != nil {
			f.logger.Warn("address resolution failed",
				log.String("address", addr),
				log.Err(err))
			if err := f.printRed(addr); err != nil {
				return err
			}
			continue
		}
		if err := f.printRed(text); err != nil {
			return err
		}
	}
	return nil
}

// splitAddresses splits on every single space and colon, keeping empty
// segments so the address positions stay stable.
func splitAddresses(line string) []string {
	tokens := make([]string, 0, 16)
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' || line[i] == ':' {
			tokens = append(tokens, line[start:i])
			start = i + 1
		}
	}
	return append(tokens, line[start:])
}

// splitGluedToken splits the token at index 2 into its two addresses,
// clamping when the token is shorter than two full addresses.
func splitGluedToken(tokens []string) []string {
	glued := tokens[2]
	first := glued[:min(addrWidth, len(glued))]
	second := glued[min(addrWidth, len(glued)):min(2*addrWidth, len(glued))]

	tokens[2] = first
	tokens = append(tokens, "")
	copy(tokens[4:], tokens[3:])
	tokens[3] = second
	return tokens
}

func (f *Filter) printRed(s string) error {
	if _, err := f.red.Fprintln(f.out, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
