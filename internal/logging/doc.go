// Package logging builds the slog loggers used across scribe.
//
// Two output formats are supported: a human-oriented console format and
// machine-readable JSON. When no format is configured, console is picked
// when stdout is a terminal and JSON otherwise. Loggers write to stdout
// and, when a log directory is configured, to scribe.log inside it.
package logging
