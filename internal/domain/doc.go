// Package domain contains the core value objects for the serial monitor.
//
// This package is the innermost layer. It has no dependencies on
// infrastructure concerns (terminals, serial devices, logging) and holds
// only the vocabulary shared by the other layers.
//
// # Values
//
//   - Line: a complete, newline-stripped, CR-normalized text record,
//     represented as a plain string throughout the module
//   - [ExtraArgs]: free-form key/value options handed to every filter
//   - sentinel errors checked with errors.Is by the public API
package domain
