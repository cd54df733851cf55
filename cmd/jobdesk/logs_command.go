package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jobdesk/internal/logs"
)

const logFollowWait = time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:         "logs",
		Short:       "Display jobdesk's activity log",
		Long:        "Display jobdesk's activity log. Filter by job or backend request id to trace a single action.",
		Args:        cobra.NoArgs,
		Annotations: publicAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := strings.TrimSpace(cfg.Logging.File)
			if path == "" {
				return errors.New("logging.file is not set; nothing to show")
			}
			switch strings.ToLower(strings.TrimSpace(filter.MinLevel)) {
			case "", "debug", "info", "warn", "warning", "error":
			default:
				return fmt.Errorf("--level must be debug, info, warn, or error, got %q", filter.MinLevel)
			}

			out := cmd.OutOrStdout()
			opts := logs.TailOptions{Offset: -1, Limit: max(lines, 0), Filter: filter}
			if lines <= 0 {
				opts.Offset = 0
			}
			printed := false
			for {
				result, err := logs.Tail(cmd.Context(), path, opts)
				if err != nil {
					if follow && errors.Is(err, cmd.Context().Err()) {
						return nil
					}
					return fmt.Errorf("tail logs: %w", err)
				}
				for _, entry := range result.Entries {
					fmt.Fprintln(out, entry.Text())
					printed = true
				}
				if !follow {
					if !printed {
						fmt.Fprintln(out, "No log entries available")
					}
					return nil
				}
				opts.Offset = result.Offset
				opts.Limit = 0
				opts.Follow = true
				opts.Wait = logFollowWait
				if cmd.Context().Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of entries to show (0 for all)")
	cmd.Flags().Int64Var(&filter.JobID, "job", 0, "Only entries for this job id")
	cmd.Flags().StringVar(&filter.RequestID, "request", "", "Only entries for this backend request id")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level: debug, info, warn, error")
	return cmd
}
