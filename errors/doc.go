// Package errors provides the structured error type shared by the kernel,
// the DI container and the inspect server. Every AppError carries a
// machine-readable code and the HTTP status the inspect server answers with.
package errors
