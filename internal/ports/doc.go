// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [Transport]: Byte-stream link to the embedded device
//   - [LineFilter]: Pluggable classifier that may claim and render a line
//   - [Resolver]: Maps crash addresses to source locations via a symbol file
//   - [LineSink]: Append target receiving every observed line
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// mechanisms (termios serial devices, external executables, files).
//
// This separation enables:
//   - Testing session logic with mock implementations
//   - Swapping infrastructure without changing dispatch semantics
//   - Clear boundaries and dependency direction
package ports
