package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/thoreinstein/bkp/internal/errors"
)

// FilePerm is the permission used when the log file is created.
const FilePerm = 0o600

// Sink is a logger that mirrors every record to the console and appends it
// to a log file. Close releases the file; the logger must not be used after.
type Sink struct {
	*slog.Logger

	path string
	file io.Closer
}

// SinkConfig configures OpenSink.
type SinkConfig struct {
	// Path is the log file. It is opened in append mode and never rotated.
	Path string
	// FileFormat selects JSON (default) or text records for the file.
	FileFormat Format
	// FileLevel is the minimum level written to the file.
	FileLevel slog.Level
	// Console receives the mirrored records. Nil disables the mirror.
	Console slog.Handler
}

// OpenSink opens (or creates) the log file and returns a Sink writing to it
// and to cfg.Console.
func OpenSink(cfg SinkConfig) (*Sink, error) {
	if cfg.Path == "" {
		return nil, errors.New("log file path is required")
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, FilePerm)
	if err != nil {
		return nil, errors.Wrap(err, "opening log file")
	}

	opts := HandlerOptions(cfg.FileLevel)
	var fileHandler slog.Handler
	switch cfg.FileFormat {
	case FormatText:
		fileHandler = slog.NewTextHandler(f, opts)
	default:
		fileHandler = slog.NewJSONHandler(f, opts)
	}

	handler := fileHandler
	if cfg.Console != nil {
		handler = NewMultiHandler(cfg.Console, fileHandler)
	}

	return &Sink{
		Logger: slog.New(handler),
		path:   cfg.Path,
		file:   f,
	}, nil
}

// Path returns the log file location.
func (s *Sink) Path() string {
	return s.path
}

// Close closes the log file.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return errors.Wrap(err, "closing log file")
}
