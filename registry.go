package monitor

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/jwolf02/Monitor/internal/domain"
)

// FilterContext carries the session facilities a registered filter
// constructor may wire into its filter.
type FilterContext struct {
	// ELF is the configured symbol file path, empty when absent.
	ELF string

	// Out is the session's output writer.
	Out io.Writer

	// Extra carries the session's free-form key/value settings.
	Extra ExtraArgs

	// Resolver is the session's address resolver, nil without an ELF.
	Resolver Resolver

	Logger Logger
}

// FilterConstructor builds a line filter for one session.
type FilterConstructor func(FilterContext) (LineFilter, error)

var filterRegistry = struct {
	mu    sync.RWMutex
	ctors map[string]FilterConstructor
}{ctors: make(map[string]FilterConstructor)}

// RegisterFilter makes a filter constructor available under name,
// typically from a plugin package's init. Registering the same name
// twice panics.
func RegisterFilter(name string, ctor FilterConstructor) {
	filterRegistry.mu.Lock()
	defer filterRegistry.mu.Unlock()

	if name == "" || ctor == nil {
		panic("monitor: RegisterFilter with empty name or nil constructor")
	}
	if _, dup := filterRegistry.ctors[name]; dup {
		panic(fmt.Sprintf("monitor: filter %q registered twice", name))
	}
	filterRegistry.ctors[name] = ctor
}

// RegisteredFilters returns the sorted names of all registered filters.
func RegisteredFilters() []string {
	filterRegistry.mu.RLock()
	defer filterRegistry.mu.RUnlock()

	names := make([]string, 0, len(filterRegistry.ctors))
	for name := range filterRegistry.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newRegisteredFilter constructs the filter registered under name.
// An unregistered name fails with domain.ErrUnknownFilter.
func newRegisteredFilter(name string, fctx FilterContext) (LineFilter, error) {
	filterRegistry.mu.RLock()
	ctor, ok := filterRegistry.ctors[name]
	filterRegistry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFilter, name)
	}
	f, err := ctor(fctx)
	if err != nil {
		return nil, fmt.Errorf("construct filter %q: %w", name, err)
	}
	return f, nil
}
