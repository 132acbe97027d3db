// Package log provides the logging abstraction used across monitor components.
//
// The Logger interface can be implemented by any logging library. Adapters
// are provided for zerolog and as a no-op for tests and for embedders that
// do not want monitor log output.
//
// # Usage
//
// Wrap an existing zerolog logger:
//
//	logger := log.NewZerologAdapterWithLogger(zl)
//
// Or discard everything:
//
//	logger := log.NewNoopLogger()
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with existing logging
// infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
