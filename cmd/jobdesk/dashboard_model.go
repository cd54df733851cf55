package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"jobdesk/internal/backend"
	"jobdesk/internal/jobs"
	"jobdesk/internal/reports"
)

type dashboardMode int

const (
	dashboardBrowse dashboardMode = iota
	dashboardFilters
	dashboardDetail
	dashboardOverride
	dashboardConfirmSend
	dashboardReports
)

type dashboardModel struct {
	ctx       context.Context
	list      *jobs.ListController
	detail    *jobs.DetailController
	reports   *reports.Controller
	exportDir string

	mode           dashboardMode
	cursor         int
	overrideCursor int
	form           *filterForm
	spinner        spinner.Model
	busy           int
	width          int
	height         int
	reportsLoaded  bool
	statusMessage  string
	fatalErr       error

	// overridePending covers the gap between dispatching an override and
	// the controller marking its dialog as saving.
	overridePending bool
}

func newDashboardModel(ctx context.Context, deps dashboardDeps) dashboardModel {
	return dashboardModel{
		ctx:       ctx,
		list:      deps.list,
		detail:    deps.detail,
		reports:   deps.reports,
		exportDir: deps.exportDir,
		mode:      dashboardBrowse,
		busy:      1,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(dashMutedStyle)),
	}
}

// Init loads the first page. The model starts with that load counted as busy.
func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loadListCmd(), m.spinner.Tick)
}

// start counts cmd as in flight and starts the spinner when it was idle.
func (m dashboardModel) start(cmd tea.Cmd) (dashboardModel, tea.Cmd) {
	m.busy++
	if m.busy == 1 {
		return m, tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

func (m dashboardModel) done() dashboardModel {
	m.busy = max(m.busy-1, 0)
	return m
}

// fail ends the program on authorization failures. It reports false for
// every other error so the caller can show it locally.
func (m dashboardModel) fail(err error) (dashboardModel, tea.Cmd, bool) {
	if err == nil || !backend.IsAuthFailure(err) {
		return m, nil, false
	}
	m.fatalErr = err
	return m, tea.Quit, true
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form.resize(m.width)
		}
		return m, nil
	case spinner.TickMsg:
		if m.busy == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case listLoadedMsg:
		m = m.done()
		if next, cmd, fatal := m.fail(msg.err); fatal {
			return next, cmd
		}
		items := m.list.State().Items
		m.cursor = clampInt(m.cursor, 0, max(len(items)-1, 0))
		if msg.err != nil {
			m.statusMessage = jobs.LoadFailedMessage + ": " + presentError(msg.err)
		}
		return m, nil
	case detailLoadedMsg:
		m = m.done()
		if next, cmd, fatal := m.fail(msg.err); fatal {
			return next, cmd
		}
		if msg.err != nil {
			m.mode = dashboardBrowse
			m.statusMessage = fmt.Sprintf("Could not load job #%d: %s", msg.id, presentError(msg.err))
			return m, nil
		}
		if m.mode != dashboardDetail {
			// Closed before the load finished.
			m.detail.Close()
		}
		return m, nil
	case overrideDoneMsg:
		m = m.done()
		m.overridePending = false
		if next, cmd, fatal := m.fail(msg.err); fatal {
			return next, cmd
		}
		if msg.err != nil {
			m.statusMessage = ""
			return m, nil
		}
		m.mode = dashboardDetail
		m.statusMessage = m.detail.State().Notice
		return m, nil
	case sendDoneMsg:
		m = m.done()
		if next, cmd, fatal := m.fail(msg.err); fatal {
			return next, cmd
		}
		m.mode = dashboardDetail
		if msg.err != nil {
			m.statusMessage = "Send failed: " + presentError(msg.err)
			return m, nil
		}
		m.statusMessage = msg.message
		if m.statusMessage == "" {
			m.statusMessage = "Video sent"
		}
		return m, nil
	case reportsLoadedMsg:
		m = m.done()
		if next, cmd, fatal := m.fail(msg.err); fatal {
			return next, cmd
		}
		m.reportsLoaded = true
		return m, nil
	case exportDoneMsg:
		m = m.done()
		if next, cmd, fatal := m.fail(msg.err); fatal {
			return next, cmd
		}
		if msg.err != nil {
			m.statusMessage = "Export failed: " + presentError(msg.err)
			return m, nil
		}
		m.statusMessage = "Exported " + msg.path
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if keyMsg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case dashboardFilters:
		return m.updateFilters(keyMsg)
	case dashboardDetail:
		return m.updateDetail(keyMsg)
	case dashboardOverride:
		return m.updateOverride(keyMsg)
	case dashboardConfirmSend:
		return m.updateConfirmSend(keyMsg)
	case dashboardReports:
		return m.updateReports(keyMsg)
	default:
		return m.updateBrowse(keyMsg)
	}
}

func (m dashboardModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.list.State()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(state.Items)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		if m.cursor >= len(state.Items) {
			m.statusMessage = "No job selected"
			return m, nil
		}
		m.statusMessage = ""
		m.mode = dashboardDetail
		return m.start(m.openDetailCmd(state.Items[m.cursor].ID))
	case "f":
		m.form = newFilterForm(m.list.Query(), m.width)
		m.mode = dashboardFilters
		m.statusMessage = ""
		return m, nil
	case "c":
		m.list.ClearFilters()
		m.cursor = 0
		m.statusMessage = "Filters cleared"
		return m.start(m.loadListCmd())
	case "n":
		if !m.list.NextPage() {
			m.statusMessage = "Already on the last page"
			return m, nil
		}
		m.cursor = 0
		m.statusMessage = ""
		return m.start(m.loadListCmd())
	case "p":
		if !m.list.PrevPage() {
			m.statusMessage = "Already on the first page"
			return m, nil
		}
		m.cursor = 0
		m.statusMessage = ""
		return m.start(m.loadListCmd())
	case "r":
		m.statusMessage = ""
		return m.start(m.loadListCmd())
	case "tab":
		m.mode = dashboardReports
		m.statusMessage = ""
		if !m.reportsLoaded {
			return m.start(m.loadReportsCmd())
		}
		return m, nil
	}
	return m, nil
}

func (m dashboardModel) updateFilters(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.mode = dashboardBrowse
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.form = nil
		m.mode = dashboardBrowse
		m.statusMessage = "Filters unchanged"
		return m, nil
	case "tab", "down":
		return m, m.form.move(1)
	case "shift+tab", "up":
		return m, m.form.move(-1)
	case "enter":
		filters, pageSize, err := m.form.values()
		if err == nil {
			err = m.list.SetFilters(filters)
		}
		if err == nil && pageSize != m.list.Query().PageSize {
			err = m.list.SetPageSize(pageSize)
		}
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.form = nil
		m.mode = dashboardBrowse
		m.cursor = 0
		m.statusMessage = ""
		return m.start(m.loadListCmd())
	}
	return m, m.form.update(msg)
}

func (m dashboardModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.detail.State()
	switch msg.String() {
	case "esc", "backspace", "q":
		m.detail.Close()
		m.mode = dashboardBrowse
		m.statusMessage = ""
		return m, nil
	case "r":
		if state.Job == nil {
			return m, nil
		}
		return m.start(m.openDetailCmd(state.Job.ID))
	case "s":
		if err := m.detail.BeginOverride(); err != nil {
			m.statusMessage = err.Error()
			return m, nil
		}
		m.overrideCursor = max(slices.Index(jobs.AllStatuses(), m.detail.State().Dialog.Selection), 0)
		m.detail.Select(jobs.AllStatuses()[m.overrideCursor])
		m.mode = dashboardOverride
		m.statusMessage = ""
		return m, nil
	case "v":
		if state.Job == nil || !state.Job.CanSendVideo() {
			m.statusMessage = "Send video is only available for jobs with a final video that have not been sent"
			return m, nil
		}
		if state.Sending {
			m.statusMessage = jobs.ErrDeliveryInFlight.Error()
			return m, nil
		}
		m.mode = dashboardConfirmSend
		m.statusMessage = ""
		return m, nil
	}
	return m, nil
}

func (m dashboardModel) updateOverride(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dialog := m.detail.State().Dialog
	statuses := jobs.AllStatuses()
	switch msg.String() {
	case "esc":
		if m.overridePending || dialog.Saving {
			return m, nil
		}
		m.detail.CancelOverride()
		m.mode = dashboardDetail
		return m, nil
	case "up", "k":
		if m.overrideCursor > 0 {
			m.overrideCursor--
		}
		m.detail.Select(statuses[m.overrideCursor])
		return m, nil
	case "down", "j":
		if m.overrideCursor < len(statuses)-1 {
			m.overrideCursor++
		}
		m.detail.Select(statuses[m.overrideCursor])
		return m, nil
	case "enter":
		if m.overridePending || dialog.Saving {
			return m, nil
		}
		m.detail.Select(statuses[m.overrideCursor])
		m.overridePending = true
		return m.start(m.confirmOverrideCmd())
	}
	return m, nil
}

func (m dashboardModel) updateConfirmSend(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.mode = dashboardDetail
		m.statusMessage = "Sending video..."
		return m.start(m.sendVideoCmd())
	case "n", "esc":
		m.mode = dashboardDetail
		m.statusMessage = "Send cancelled"
		return m, nil
	}
	return m, nil
}

func (m dashboardModel) updateReports(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "esc":
		m.mode = dashboardBrowse
		m.statusMessage = ""
		return m, nil
	case "r":
		return m.start(m.loadReportsCmd())
	case "m":
		mode := m.reports.State().Mode.Toggle()
		if err := m.reports.SetMode(mode); err != nil {
			m.statusMessage = err.Error()
			return m, nil
		}
		m.statusMessage = fmt.Sprintf("Trend by %s", mode)
		return m.start(m.loadTrendCmd())
	case "e":
		if m.reports.State().Exporting {
			return m, nil
		}
		m.statusMessage = "Exporting CSV..."
		return m.start(m.exportCmd())
	}
	return m, nil
}
