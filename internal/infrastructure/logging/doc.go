// Package logging provides structured logging for the button node.
//
// This package wraps Go's standard log/slog package so that every
// component (bridge, publisher, subscriber, dispatch, fault sink) logs with
// the same default fields.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Component("dispatch").Warn("spin failed", "error", err)
//
// Never log the broker password or the InfluxDB token.
package logging
