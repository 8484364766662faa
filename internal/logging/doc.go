// Package logging builds slog loggers with the console and JSON handlers
// used by the daemon and CLI, plus shared attribute helpers.
package logging
