// Package main hosts the jobdesk CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into calls against the
// video-job admin API: session management, job listing and inspection,
// status overrides, manual video delivery, and reports. Configuration
// resolution, the session guard, and logger setup live in commandContext so
// subcommands only deal with presentation.
//
// Behaviour belongs in the internal packages; commands here parse flags,
// drive the controllers, and render their state as tables, JSON, or the
// interactive dashboard.
package main
