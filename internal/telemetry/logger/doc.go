// Package logger provides structured logging for savecore.
//
// This package wraps log/slog for structured JSON logging:
//
//   - logger.go: Logger configuration and initialization
//   - context.go: Context-aware logging with operation IDs
//   - redact.go: Sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Dynamic log level adjustment
//   - Automatic masking of credentials and raw save payloads
//   - Context propagation for operation tracing
package logger
