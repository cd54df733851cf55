package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"jobdesk/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage video jobs",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsSetStatusCommand(ctx))
	jobsCmd.AddCommand(newJobsSendVideoCommand(ctx))
	jobsCmd.AddCommand(newJobsStatusesCommand())
	return jobsCmd
}

type listFlags struct {
	status      string
	failedStage string
	userID      string
	mobile      string
	jobID       string
	startDate   string
	endDate     string
	page        int
	pageSize    int
}

func (f listFlags) filters() (jobs.Filters, error) {
	filters := jobs.Filters{
		UserID:       f.userID,
		MobileNumber: f.mobile,
		JobID:        f.jobID,
		StartDate:    f.startDate,
		EndDate:      f.endDate,
	}
	if strings.TrimSpace(f.status) != "" {
		status, ok := jobs.ParseStatus(f.status)
		if !ok {
			return filters, fmt.Errorf("%w: unknown status %q (see 'jobdesk jobs statuses')", jobs.ErrInvalidFilter, f.status)
		}
		filters.Status = status
	}
	if strings.TrimSpace(f.failedStage) != "" {
		stage, ok := jobs.ParseFailedStage(f.failedStage)
		if !ok {
			return filters, fmt.Errorf("%w: failed stage must be one of %v", jobs.ErrInvalidFilter, jobs.AllFailedStages())
		}
		filters.FailedStage = stage
	}
	return filters, nil
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs with optional filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.backendClient()
			if err != nil {
				return err
			}
			cfg := ctx.configValue()
			list := jobs.NewListController(client, cfg.Jobs.PageSize, ctx.logger())

			filters, err := flags.filters()
			if err != nil {
				return err
			}
			if err := list.SetFilters(filters); err != nil {
				return err
			}
			if cmd.Flags().Changed("page-size") {
				if err := list.SetPageSize(flags.pageSize); err != nil {
					return err
				}
			}
			list.SetPage(flags.page)

			if err := list.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", jobs.LoadFailedMessage, err)
			}
			state := list.State()
			if ctx.jsonOutput() {
				return writeJSON(cmd, toJobListJSON(state))
			}
			out := cmd.OutOrStdout()
			printJobList(out, state, shouldColorize(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&flags.failedStage, "failed-stage", "", "Filter by failure stage (photo, lipsync, stitch, delivery)")
	cmd.Flags().StringVar(&flags.userID, "user-id", "", "Filter by user id")
	cmd.Flags().StringVar(&flags.mobile, "mobile", "", "Filter by mobile number")
	cmd.Flags().StringVar(&flags.jobID, "job-id", "", "Filter by job id")
	cmd.Flags().StringVar(&flags.startDate, "start-date", "", "Only jobs created on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&flags.endDate, "end-date", "", "Only jobs created on or before YYYY-MM-DD")
	cmd.Flags().IntVar(&flags.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", jobs.DefaultPageSize, "Page size (10, 20, 50, 100)")
	return cmd
}

func parseJobID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", arg)
	}
	return id, nil
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a job's full detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.backendClient()
			if err != nil {
				return err
			}
			detail := jobs.NewDetailController(client, nil, ctx.logger())
			if err := detail.Open(cmd.Context(), id); err != nil {
				return fmt.Errorf("load job %d: %w", id, err)
			}
			job := *detail.State().Job
			if ctx.jsonOutput() {
				return writeJSON(cmd, toJobDetailJSON(job))
			}
			out := cmd.OutOrStdout()
			printJobDetail(out, job, shouldColorize(out))
			return nil
		},
	}
}

func newJobsSetStatusCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Override a job's status",
		Long:  "Override a job's status. The backend increments the retry count and clears the failure stage and error code.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			status, ok := jobs.ParseStatus(args[1])
			if !ok {
				return fmt.Errorf("%w: %q (see 'jobdesk jobs statuses')", jobs.ErrInvalidStatus, args[1])
			}
			client, err := ctx.backendClient()
			if err != nil {
				return err
			}
			detail := jobs.NewDetailController(client, nil, ctx.logger())
			if err := detail.Open(cmd.Context(), id); err != nil {
				return fmt.Errorf("load job %d: %w", id, err)
			}
			current := *detail.State().Job

			out := cmd.OutOrStdout()
			prompt := promptWriter(ctx, cmd)
			fmt.Fprintln(prompt, overridePreview(current, status))
			if !assumeYes && !confirm(cmd.InOrStdin(), prompt, "Apply this override?") {
				fmt.Fprintln(prompt, "Override cancelled")
				return nil
			}

			if err := detail.BeginOverride(); err != nil {
				return err
			}
			detail.Select(status)
			if err := detail.ConfirmOverride(cmd.Context()); err != nil {
				return fmt.Errorf("override job %d: %w", id, err)
			}
			state := detail.State()
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"message": state.Notice, "job": toJobDetailJSON(*state.Job)})
			}
			if state.Notice != "" {
				fmt.Fprintln(out, state.Notice)
			}
			fmt.Fprintf(out, "Job #%d is now %s (retries %d)\n", id, statusBadge(state.Job.Status, shouldColorize(out)), state.Job.Retries())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newJobsSendVideoCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "send-video <id>",
		Short: "Deliver a job's final video to the user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.backendClient()
			if err != nil {
				return err
			}
			detail := jobs.NewDetailController(client, nil, ctx.logger())
			if err := detail.Open(cmd.Context(), id); err != nil {
				return fmt.Errorf("load job %d: %w", id, err)
			}

			out := cmd.OutOrStdout()
			prompt := promptWriter(ctx, cmd)
			approve := func(d jobs.Detail) bool {
				if assumeYes {
					return true
				}
				return confirm(cmd.InOrStdin(), prompt, fmt.Sprintf("Send the final video for job #%d to %s?", d.ID, orNA(d.MobileNumber)))
			}
			message, err := detail.SendVideo(cmd.Context(), approve)
			switch {
			case errors.Is(err, jobs.ErrDeliveryDeclined):
				fmt.Fprintln(prompt, "Send cancelled")
				return nil
			case err != nil:
				return fmt.Errorf("send video for job %d: %w", id, err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"message": message, "job_id": id})
			}
			if message == "" {
				message = "Video sent"
			}
			fmt.Fprintln(out, message)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// promptWriter keeps prompts off stdout when it carries JSON.
func promptWriter(ctx *commandContext, cmd *cobra.Command) io.Writer {
	if ctx.jsonOutput() {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

func newJobsStatusesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "statuses",
		Short:       "List the pipeline statuses in order",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true", annotationPublic: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(jobs.AllStatuses()))
			for i, status := range jobs.AllStatuses() {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					string(status),
					statusBadge(status, colorize),
					yesNo(status.IsTerminal()),
				})
			}
			fmt.Fprintln(out, renderTable("", []string{"#", "Value", "Label", "Terminal"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
}
