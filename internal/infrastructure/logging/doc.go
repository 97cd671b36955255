// Package logging provides structured logging for Door Core.
//
// It wraps log/slog with service-wide default fields and config-driven
// level and format selection. Database credentials and other secrets must
// never appear in log attributes; callers log connection hosts only.
package logging
