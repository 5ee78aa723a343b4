// Package logger provides structured logging for modkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component- or module-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("kernel")
//	log.Info("module loaded", logger.Fields(logger.FieldModule, id))
package logger
