// Package logging provides slog construction helpers and shared attribute
// conventions for the daemon and CLI.
package logging
