// Package logging builds slog loggers for the daemon and CLI.
//
// Loggers write human-readable console output or JSON, selected by
// configuration, and can tee into a log file alongside stdout. Typed
// attribute helpers keep field names consistent across packages.
package logging
