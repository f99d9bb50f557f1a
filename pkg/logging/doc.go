// Package logging provides structured logging configuration for contractd.
//
// This package wraps log/slog so every component logs the same way. A
// component accepts a *slog.Logger; when none is given it uses Nop.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("compiled contract", "name", "orders", "scenarios", 4)
//
// The command line reads these environment variables:
//
//	CONTRACTD_LOG_LEVEL   debug, info, warn or error
//	CONTRACTD_LOG_FORMAT  text or json
//	CONTRACTD_LOKI_URL    optional Loki push endpoint
//
// # Loki
//
// Setup adds a LokiHandler next to the console handler when a Loki URL is
// configured. Records are batched and pushed as JSON lines; call the
// returned close function to flush before exit.
package logging
