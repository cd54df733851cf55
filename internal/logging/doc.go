// Package logging assembles structured slog loggers and formatting helpers used
// across jobdesk.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so backend calls are tagged with their
// request id and job id. Logs go to a file by default because the dashboard
// owns the terminal; verbose mode tees a console copy to stderr.
package logging
