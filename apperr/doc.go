// Package apperr provides the structured error type used across the runtime.
//
// Errors are categorized by a small fixed set of codes matching the POSIX-ish
// errno values surfaced at the actor runtime boundary (see package runtime):
// bad descriptor, broken pipe, not found, cycle, already-exists and invalid
// argument. Runtime I/O methods (package runtime's NodeRuntime) report a
// failure as a returned Go error, typically an *AppError; they do not set the
// node's errno. Package wasmbridge turns such a failure into a -1 return
// value for a WASM module. Internal invariant
// violations (cycle, duplicate pipe, alias ambiguity) are fatal for the
// offending operation and surface as an *AppError to the caller.
package apperr
