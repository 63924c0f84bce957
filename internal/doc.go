// Package internal contains the implementation packages for journey.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - exercise: Exercise model, ordered set and info.toml registry loading
//   - status: Completion file parsing, atomic saving and reset
//   - verify: Compiler invocation per exercise mode with timeouts and cleanup
//   - watcher: fsnotify adapter delivering changes to a single file, plus debouncing
//   - controller: One-shot runs, verify-all and the interactive watch state machine
//   - terminal: Raw keyboard input, CRLF output and the styled printer
//   - config: Viper-backed configuration with validation
//   - errors: Structured errors and compiler diagnostic parsing
//   - logging: slog-based structured logging
//   - validation: Command and path checks applied before exec
//   - version: Build information
//
// # Inter-Package Communication
//
// The controller is the only package that knows about all the others. It
// receives file changes and keypresses over channels and never shares mutable
// state with their producing goroutines:
//
//   - Watcher emits ChangeEvents on a bounded queue that drops on overflow
//   - Terminal emits key runes read from a cancelable stdin
//   - Verify returns an Outcome per run and never touches completion
//   - Status persists completion after every transition to done
//
// # Testing Strategy
//
// Packages that spawn processes test against a shell script standing in for
// the compiler (see testutils). Property tests for status round-trips,
// completion monotonicity and debouncing run with -tags property.
package internal
