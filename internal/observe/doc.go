// Package observe provides the cache's telemetry and logging plumbing:
// OpenTelemetry counters for dispatched events and projection memo hits,
// one span per dispatched event, stdout exporters for the CLI, and slog
// loggers.
package observe
