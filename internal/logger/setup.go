package logger

import (
	"log/slog"
	"os"
)

// New builds the supervisor's own diagnostic logger: a colorized text
// handler for interactive use, or plain JSON when jsonFormat is requested
// or stdout is not a terminal. The supervisor path in cmd/procmon always
// passes jsonFormat=false; the `-o json` switch affects only list output.
func New(verbose bool, jsonFormat bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if jsonFormat || !isTerminal(os.Stdout) {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(NewColorTextHandler(os.Stdout, opts, true))
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
