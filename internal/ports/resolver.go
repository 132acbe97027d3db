package ports

import "context"

// Resolver maps a memory address to a human-readable source location
// using the device's symbol file. Implementations typically shell out to
// an addr2line-style tool and must bound the invocation themselves.
type Resolver interface {
	// Resolve returns the resolution text for one 0x-prefixed address.
	Resolve(ctx context.Context, address string) (string, error)
}
