package main

import (
	"context"
	"errors"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"jobdesk/internal/backend"
	"jobdesk/internal/jobs"
	"jobdesk/internal/logging"
	"jobdesk/internal/reports"
	"jobdesk/internal/session"
)

func newDashboardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive job and report console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
				return errors.New("dashboard requires an interactive terminal (TTY)")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// The dashboard owns the terminal, so logs only go to the file.
			logger, err := logging.NewFromConfig(cfg, false)
			if err != nil {
				logger = logging.NewNop()
			}
			guard := session.NewGuard(session.NewFileTokenStore(cfg.Session.TokenPath), logger)
			client := backend.NewFromConfig(cfg, guard, logger)
			trendMode, _ := reports.ParseTrendMode(cfg.Reports.TrendMode)

			list := jobs.NewListController(client, cfg.Jobs.PageSize, logger)
			m := newDashboardModel(cmd.Context(), dashboardDeps{
				list:      list,
				detail:    jobs.NewDetailController(client, list, logger),
				reports:   reports.NewController(client, reports.DateRange{Start: cfg.Reports.StartDate, End: cfg.Reports.EndDate}, trendMode, logger),
				exportDir: cfg.Reports.ExportDir,
			})

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				if errors.Is(cmd.Context().Err(), context.Canceled) {
					return context.Canceled
				}
				if strings.Contains(strings.ToLower(err.Error()), "tty") {
					return errors.New("dashboard requires an interactive terminal (TTY)")
				}
				return err
			}
			if fm, ok := final.(dashboardModel); ok {
				return fm.fatalErr
			}
			return nil
		},
	}
}

type dashboardDeps struct {
	list      *jobs.ListController
	detail    *jobs.DetailController
	reports   *reports.Controller
	exportDir string
}

type listLoadedMsg struct{ err error }

type detailLoadedMsg struct {
	id  int64
	err error
}

type overrideDoneMsg struct{ err error }

type sendDoneMsg struct {
	message string
	err     error
}

type reportsLoadedMsg struct{ err error }

type exportDoneMsg struct {
	path string
	err  error
}

func (m dashboardModel) loadListCmd() tea.Cmd {
	ctx, list := m.ctx, m.list
	return func() tea.Msg {
		return listLoadedMsg{err: list.Refresh(ctx)}
	}
}

func (m dashboardModel) openDetailCmd(id int64) tea.Cmd {
	ctx, detail := m.ctx, m.detail
	return func() tea.Msg {
		return detailLoadedMsg{id: id, err: detail.Open(ctx, id)}
	}
}

func (m dashboardModel) confirmOverrideCmd() tea.Cmd {
	ctx, detail := m.ctx, m.detail
	return func() tea.Msg {
		return overrideDoneMsg{err: detail.ConfirmOverride(ctx)}
	}
}

// sendVideoCmd delivers the open job. The dashboard asks for confirmation
// before issuing it, so the controller's confirm hook always approves.
func (m dashboardModel) sendVideoCmd() tea.Cmd {
	ctx, detail := m.ctx, m.detail
	return func() tea.Msg {
		message, err := detail.SendVideo(ctx, func(jobs.Detail) bool { return true })
		return sendDoneMsg{message: message, err: err}
	}
}

func (m dashboardModel) loadReportsCmd() tea.Cmd {
	ctx, rc := m.ctx, m.reports
	return func() tea.Msg {
		return reportsLoadedMsg{err: rc.LoadAll(ctx)}
	}
}

func (m dashboardModel) loadTrendCmd() tea.Cmd {
	ctx, rc := m.ctx, m.reports
	return func() tea.Msg {
		return reportsLoadedMsg{err: rc.LoadTrend(ctx)}
	}
}

func (m dashboardModel) exportCmd() tea.Cmd {
	ctx, rc, dir := m.ctx, m.reports, m.exportDir
	return func() tea.Msg {
		path, err := rc.Export(ctx, dir)
		return exportDoneMsg{path: path, err: err}
	}
}
