package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jobdesk/internal/reports"
)

type rangeFlags struct {
	start string
	end   string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "Range start YYYY-MM-DD (default from [reports] start_date)")
	cmd.Flags().StringVar(&f.end, "end", "", "Range end YYYY-MM-DD (default from [reports] end_date)")
}

// resolve applies flag overrides to the configured default range.
func (f *rangeFlags) resolve(cmd *cobra.Command, defaults reports.DateRange) reports.DateRange {
	r := defaults
	if cmd.Flags().Changed("start") {
		r.Start = f.start
	}
	if cmd.Flags().Changed("end") {
		r.End = f.end
	}
	return r.Normalized()
}

func newReportsCommand(ctx *commandContext) *cobra.Command {
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "Aggregate reports over a date range",
	}
	reportsCmd.AddCommand(newReportsStatsCommand(ctx))
	reportsCmd.AddCommand(newReportsTrendCommand(ctx))
	reportsCmd.AddCommand(newReportsTrafficCommand(ctx))
	reportsCmd.AddCommand(newReportsExportCommand(ctx))
	reportsCmd.AddCommand(newReportsAllCommand(ctx))
	return reportsCmd
}

// reportController builds a controller over the configured defaults with
// the command's range and mode overrides applied.
func reportController(ctx *commandContext, cmd *cobra.Command, flags *rangeFlags, mode string) (*reports.Controller, error) {
	client, err := ctx.backendClient()
	if err != nil {
		return nil, err
	}
	cfg := ctx.configValue()
	defaults := reports.DateRange{Start: cfg.Reports.StartDate, End: cfg.Reports.EndDate}
	trendMode, _ := reports.ParseTrendMode(cfg.Reports.TrendMode)

	controller := reports.NewController(client, defaults, trendMode, ctx.logger())
	if err := controller.SetRange(flags.resolve(cmd, defaults)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(mode) != "" {
		parsed, ok := reports.ParseTrendMode(mode)
		if !ok {
			return nil, fmt.Errorf("--mode must be day or week, got %q", mode)
		}
		if err := controller.SetMode(parsed); err != nil {
			return nil, err
		}
	}
	return controller, nil
}

func newReportsStatsCommand(ctx *commandContext) *cobra.Command {
	var flags rangeFlags
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals and categorical breakdowns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := reportController(ctx, cmd, &flags, "")
			if err != nil {
				return err
			}
			if err := controller.LoadStats(cmd.Context()); err != nil {
				return fmt.Errorf("load stats: %w", err)
			}
			stats := controller.State().Stats.Data
			if ctx.jsonOutput() {
				return writeJSON(cmd, toStatsJSON(stats))
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newReportsTrendCommand(ctx *commandContext) *cobra.Command {
	var flags rangeFlags
	var mode string
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show entries over time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := reportController(ctx, cmd, &flags, mode)
			if err != nil {
				return err
			}
			if err := controller.LoadTrend(cmd.Context()); err != nil {
				return fmt.Errorf("load trend: %w", err)
			}
			state := controller.State()
			if ctx.jsonOutput() {
				return writeJSON(cmd, toTrendJSON(state.Trend.Data))
			}
			printTrend(cmd.OutOrStdout(), state.Trend.Data, state.Range)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", "", "Bucket size: day or week (default from [reports] trend_mode)")
	return cmd
}

func newReportsTrafficCommand(ctx *commandContext) *cobra.Command {
	var flags rangeFlags
	cmd := &cobra.Command{
		Use:   "traffic",
		Short: "Show UTM traffic sources and per-source conversion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := reportController(ctx, cmd, &flags, "")
			if err != nil {
				return err
			}
			if err := controller.LoadTraffic(cmd.Context()); err != nil {
				return fmt.Errorf("load traffic sources: %w", err)
			}
			traffic := controller.State().Traffic.Data
			if ctx.jsonOutput() {
				return writeJSON(cmd, toTrafficJSON(traffic))
			}
			out := cmd.OutOrStdout()
			printTraffic(out, traffic, shouldColorize(out))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newReportsExportCommand(ctx *commandContext) *cobra.Command {
	var flags rangeFlags
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the CSV report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := reportController(ctx, cmd, &flags, "")
			if err != nil {
				return err
			}
			target := strings.TrimSpace(dir)
			if target == "" {
				target = ctx.configValue().Reports.ExportDir
			}
			path, err := controller.Export(cmd.Context(), target)
			if err != nil {
				return fmt.Errorf("export csv: %w", err)
			}
			var size int64
			if info, err := os.Stat(path); err == nil {
				size = info.Size()
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"path": path, "bytes": size})
			}
			fmt.Fprintln(cmd.OutOrStdout(), exportSummary(path, size))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write into (default from [reports] export_dir)")
	return cmd
}

func newReportsAllCommand(ctx *commandContext) *cobra.Command {
	var flags rangeFlags
	var mode string
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Load stats, trend, and traffic together",
		Long:  "Load stats, trend, and traffic concurrently. Each section is shown or reports its own failure.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := reportController(ctx, cmd, &flags, mode)
			if err != nil {
				return err
			}
			loadErr := controller.LoadAll(cmd.Context())
			state := controller.State()

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, map[string]panelJSON{
					"stats":   panelOf(state.Stats, func(s reports.Stats) any { return toStatsJSON(s) }),
					"trend":   panelOf(state.Trend, func(t reports.Trend) any { return toTrendJSON(t) }),
					"traffic": panelOf(state.Traffic, func(t reports.Traffic) any { return toTrafficJSON(t) }),
				}); err != nil {
					return err
				}
				return loadErr
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if state.Stats.Err != nil {
				fmt.Fprintln(out, renderStatusLine("Stats", statusError, presentError(state.Stats.Err), colorize))
			} else {
				printStats(out, state.Stats.Data)
			}
			if state.Trend.Err != nil {
				fmt.Fprintln(out, renderStatusLine("Trend", statusError, presentError(state.Trend.Err), colorize))
			} else {
				printTrend(out, state.Trend.Data, state.Range)
			}
			if state.Traffic.Err != nil {
				fmt.Fprintln(out, renderStatusLine("Traffic", statusError, presentError(state.Traffic.Err), colorize))
			} else {
				printTraffic(out, state.Traffic.Data, colorize)
			}
			if loadErr != nil {
				return fmt.Errorf("some report sections failed: %w", loadErr)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", "", "Trend bucket size: day or week")
	return cmd
}
