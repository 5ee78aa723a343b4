// Package demo is a small module graph used by the modkit command:
//
//	greeter ─┬─ store ── logging
//	         └─ logging
//	inspect ─── logging
//
// LoggingModule is required three times and loaded once.
package demo
