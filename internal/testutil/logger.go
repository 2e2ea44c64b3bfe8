package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards everything. Handler and service
// tests pass it where a logger is required.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
