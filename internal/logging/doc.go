// Package logging provides structured logging for the bkp CLI using slog.
//
// Console output goes through [Handler], a colorized text handler that
// degrades to plain text when the writer is not a terminal or NO_COLOR is
// set. A backup run additionally opens a [Sink], which appends every record
// to the log file in the configuration directory and mirrors it to the
// console:
//
//	sink, err := logging.OpenSink(logging.SinkConfig{
//		Path:      filepath.Join(configDir, "bkp.log"),
//		FileLevel: slog.LevelInfo,
//		Console:   logging.NewConsoleHandler(logging.Config{Level: slog.LevelWarn}),
//	})
//	if err != nil {
//		return err
//	}
//	defer sink.Close()
//
// # Testing
//
// Use [ForTest] to route log output through the testing framework.
package logging
