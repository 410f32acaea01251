// Package logging constructs the single zerolog.Logger instance the rest
// of the application is handed at startup.
//
// Grounded on the structured-logging idiom used with rs/zerolog: a
// leveled logger writing structured key/value pairs rather than ad hoc
// fmt.Fprintf calls. The console writer an interactive terminal would
// normally use is swapped here for a plain file writer, since
// stdout/stderr are owned by the tcell-driven UI for the whole process
// lifetime.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/vaultkeeper"
)

// Level mirrors the handful of zerolog levels the config file exposes;
// kept as our own type so internal/config doesn't need to import zerolog
// just to validate a string.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New opens (creating parent directories if needed) the log file at path
// and returns a zerolog.Logger writing structured JSON lines to it at the
// given level, plus a closer the caller must defer.
func New(path string, level Level) (zerolog.Logger, io.Closer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return zerolog.Logger{}, nil, vaultkeeper.Wrap(vaultkeeper.KindIO, "logging.mkdir", dir, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return zerolog.Logger{}, nil, vaultkeeper.Wrap(vaultkeeper.KindIO, "logging.open", path, err)
	}

	log := zerolog.New(f).Level(level.zerolog()).With().Timestamp().Logger()
	return log, f, nil
}

// Discard returns a logger that writes nowhere, for callers that have no
// log file open.
func Discard() zerolog.Logger {
	return zerolog.New(io.Discard)
}
