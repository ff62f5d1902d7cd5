// Package logging provides structured logging for Attic.
//
// It wraps the standard library's log/slog with configuration-driven level
// and format selection plus default service/version attributes on every
// record. Components receive a *Logger (often narrowed with With) rather
// than constructing their own.
package logging
