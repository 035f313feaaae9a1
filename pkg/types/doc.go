// Package types defines the shared vocabulary of regset: registry hives,
// value kinds, the typed value payloads handed to the OS registry API, and
// the error taxonomy returned at every stage of a write.
//
// Design goals:
//   - One concrete Go type per settable value kind, so a backend can switch
//     on the value and never needs a runtime default branch.
//   - Typed errors with stable categories (invalid argument, format,
//     overflow, permission, not found, I/O) so callers branch on intent
//     rather than text.
//
// This package has no dependencies beyond the standard library.
package types
