// Package logger provides structured logging for kvstore.
//
// It wraps the standard library log/slog:
//
//   - logger.go: handler construction, global level and default logger
//   - file.go: size-based rotating file output (lumberjack)
//
// The level is held in a shared slog.LevelVar so it can be changed while the
// server runs, for example when the config file is reloaded.
package logger
