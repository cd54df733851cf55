package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jobdesk/internal/jobs"
	"jobdesk/internal/reports"
)

var (
	dashTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dashMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dashErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dashOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dashPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dashSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
)

func toneColor(tone jobs.Tone) lipgloss.Color {
	switch tone {
	case jobs.ToneOrange:
		return lipgloss.Color("208")
	case jobs.ToneBlue:
		return lipgloss.Color("33")
	case jobs.ToneYellow:
		return lipgloss.Color("220")
	case jobs.ToneGreen:
		return lipgloss.Color("42")
	case jobs.TonePurple:
		return lipgloss.Color("135")
	case jobs.ToneRed:
		return lipgloss.Color("203")
	default:
		return lipgloss.Color("245")
	}
}

func bandColor(band reports.Band) lipgloss.Color {
	switch band {
	case reports.BandGreen:
		return lipgloss.Color("42")
	case reports.BandAmber:
		return lipgloss.Color("214")
	default:
		return lipgloss.Color("203")
	}
}

func badge(status jobs.Status) string {
	return lipgloss.NewStyle().Foreground(toneColor(status.Tone())).Bold(true).Render(status.Label())
}

func (m dashboardModel) View() string {
	if m.fatalErr != nil {
		return dashErrorStyle.Render(presentError(m.fatalErr))
	}
	if m.width <= 0 {
		m.width = 110
	}
	if m.height <= 0 {
		m.height = 32
	}

	var body, hints string
	switch m.mode {
	case dashboardFilters:
		body = m.viewFilters()
		hints = "tab/up/down: field | enter: apply | esc: cancel"
	case dashboardDetail:
		body = m.viewDetail()
		hints = "s: override status | v: send video | r: reload | esc: back"
	case dashboardOverride:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.viewDetail(), m.viewOverride())
		hints = "up/down: choose | enter: save | esc: cancel"
	case dashboardConfirmSend:
		body = lipgloss.JoinVertical(lipgloss.Left, m.viewDetail(), m.viewConfirmSend())
		hints = "y: send | n: cancel"
	case dashboardReports:
		body = m.viewReports()
		hints = "m: day/week | e: export CSV | r: reload | tab: jobs | q: quit"
	default:
		body = m.viewBrowse()
		hints = "up/down: move | enter: detail | f: filters | c: clear | n/p: page | r: refresh | tab: reports | q: quit"
	}

	header := dashTitleStyle.Render("jobdesk") + "  " + dashMutedStyle.Render(hints)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.viewStatusLine())
}

func (m dashboardModel) viewStatusLine() string {
	line := m.statusMessage
	if m.busy > 0 {
		line = strings.TrimSpace(m.spinner.View() + " " + line)
	}
	if line == "" {
		return ""
	}
	style := dashMutedStyle
	lower := strings.ToLower(line)
	if strings.Contains(lower, "fail") || strings.Contains(lower, "could not") {
		style = dashErrorStyle
	}
	return style.Render(truncateRunes(line, max(m.width, 20)))
}

func (m dashboardModel) viewBrowse() string {
	state := m.list.State()
	var lines []string

	if f := state.Query.Filters; !f.Empty() {
		lines = append(lines, dashMutedStyle.Render("Filters: "+describeFilters(f)))
	}

	switch {
	case state.Err != nil:
		lines = append(lines, dashErrorStyle.Render(jobs.LoadFailedMessage))
	case !state.Loaded:
		lines = append(lines, dashMutedStyle.Render("Loading jobs..."))
	case state.Empty():
		message := state.Message
		if message == "" {
			message = "No jobs found"
		}
		lines = append(lines, dashMutedStyle.Render(message))
	default:
		lines = append(lines, dashMutedStyle.Render(fmt.Sprintf("%-8s %-14s %-16s %-20s %7s  %s", "ID", "User", "Mobile", "Status", "Retries", "Created")))
		start, end := listWindow(len(state.Items), m.cursor, clampInt(m.height-10, 5, 100))
		for i := start; i < end; i++ {
			lines = append(lines, m.renderJobRow(state.Items[i], i == m.cursor))
		}
		lines = append(lines, "", pageSummary(state))
		if state.Message != "" {
			lines = append(lines, dashMutedStyle.Render(state.Message))
		}
		if p := state.Pagination(); p.Visible() {
			lines = append(lines, dashMutedStyle.Render(fmt.Sprintf("p: previous%s | n: next%s", disabledSuffix(p.CanPrev()), disabledSuffix(p.CanNext()))))
		}
	}
	return dashPanelStyle.Width(max(m.width-2, 40)).Render(strings.Join(lines, "\n"))
}

func (m dashboardModel) renderJobRow(j jobs.Job, selected bool) string {
	status := badge(j.Status)
	if selected {
		status = j.Status.Label()
	}
	line := fmt.Sprintf("%-8d %-14s %-16s %s %7d  %s",
		j.ID,
		truncateRunes(orDash(j.UserID), 14),
		truncateRunes(orNA(j.MobileNumber), 16),
		padRight(status, 20),
		j.Retries(),
		formatTimestamp(j.CreatedAt),
	)
	if selected {
		return dashSelStyle.Render(line)
	}
	return line
}

func (m dashboardModel) viewDetail() string {
	state := m.detail.State()
	if state.Loading || state.Job == nil {
		return dashPanelStyle.Render(dashMutedStyle.Render("Loading job..."))
	}
	job := *state.Job

	var lines []string
	lines = append(lines, dashTitleStyle.Render(fmt.Sprintf("Job #%d", job.ID)))
	for _, f := range detailFields(job) {
		value := f.value
		if f.label == "Status" {
			value = badge(job.Status)
		}
		lines = append(lines, fmt.Sprintf("%-18s %s", f.label+":", value))
	}
	switch {
	case state.Sending:
		lines = append(lines, "", dashMutedStyle.Render("Sending video..."))
	case state.SendErr != nil:
		lines = append(lines, "", dashErrorStyle.Render("Send failed: "+presentError(state.SendErr)))
	case job.CanSendVideo():
		lines = append(lines, "", dashOKStyle.Render("Final video ready: press v to send"))
	}
	if state.Notice != "" {
		lines = append(lines, dashOKStyle.Render(state.Notice))
	}
	return dashPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m dashboardModel) viewOverride() string {
	dialog := m.detail.State().Dialog
	lines := []string{dashTitleStyle.Render("Override status")}
	for i, status := range jobs.AllStatuses() {
		marker := "  "
		if i == m.overrideCursor {
			marker = "> "
		}
		line := marker + status.Label()
		if i == m.overrideCursor {
			line = dashSelStyle.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", dashMutedStyle.Render("Retry count +1, failure stage and error cleared"))
	if m.overridePending || dialog.Saving {
		lines = append(lines, dashMutedStyle.Render("Saving..."))
	}
	if dialog.Err != nil {
		lines = append(lines, dashErrorStyle.Render("Update failed: "+presentError(dialog.Err)))
	}
	return dashPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m dashboardModel) viewConfirmSend() string {
	state := m.detail.State()
	if state.Job == nil {
		return ""
	}
	question := fmt.Sprintf("Send the final video for job #%d to %s? (y/n)", state.Job.ID, orNA(state.Job.MobileNumber))
	return dashPanelStyle.Render(dashTitleStyle.Render(question))
}

func (m dashboardModel) viewFilters() string {
	if m.form == nil {
		return ""
	}
	lines := []string{dashTitleStyle.Render("Filters")}
	for i, input := range m.form.inputs {
		label := fmt.Sprintf("%-14s", filterLabels[i]+":")
		if i == m.form.index {
			label = dashSelStyle.Render(label)
		}
		lines = append(lines, label+" "+input.View())
	}
	if m.form.err != "" {
		lines = append(lines, "", dashErrorStyle.Render(m.form.err))
	}
	return dashPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m dashboardModel) viewReports() string {
	state := m.reports.State()
	width := max(m.width-2, 40)
	sections := []string{dashTitleStyle.Render("Reports: " + state.Range.Describe())}

	if state.Stats.HasData {
		sections = append(sections, viewCards(state.Stats.Data), viewBreakdowns(state.Stats.Data))
	}
	sections = appendPanelState(sections, "Stats", "stats", state.Stats.Loaded, state.Stats.Err)

	if state.Trend.HasData {
		sections = append(sections, viewTrend(state.Trend.Data))
	}
	sections = appendPanelState(sections, "Trend", "trend", state.Trend.Loaded, state.Trend.Err)

	if state.Traffic.HasData {
		sections = append(sections, viewTraffic(state.Traffic.Data))
	}
	sections = appendPanelState(sections, "Traffic", "traffic sources", state.Traffic.Loaded, state.Traffic.Err)

	switch {
	case state.Exporting:
		sections = append(sections, dashMutedStyle.Render("Exporting CSV..."))
	case state.ExportErr != nil:
		sections = append(sections, dashErrorStyle.Render("Export failed: "+presentError(state.ExportErr)))
	case state.Exported != "":
		sections = append(sections, dashOKStyle.Render("Last export: "+state.Exported))
	}
	return dashPanelStyle.Width(width).Render(strings.Join(sections, "\n\n"))
}

// appendPanelState adds a panel's error, or its loading line before the
// first load finishes. Data from an earlier load stays above the error.
func appendPanelState(sections []string, title, noun string, loaded bool, err error) []string {
	switch {
	case err != nil:
		return append(sections, dashErrorStyle.Render(title+" failed: "+presentError(err)))
	case !loaded:
		return append(sections, dashMutedStyle.Render("Loading "+noun+"..."))
	}
	return sections
}

func viewCards(stats reports.Stats) string {
	cards := make([]string, 0, len(stats.Cards()))
	for _, card := range stats.Cards() {
		cards = append(cards, dashPanelStyle.Render(dashMutedStyle.Render(card.Label)+"\n"+dashTitleStyle.Render(formatCount(card.Value))))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

const dashboardBreakdownRows = 5

func viewBreakdowns(stats reports.Stats) string {
	blocks := make([]string, 0, len(reports.Dimensions))
	for _, dim := range reports.Dimensions {
		shares := reports.Shares(stats.Breakdowns[dim])
		lines := []string{dashTitleStyle.Render(dim.Title())}
		if len(shares) == 0 {
			lines = append(lines, dashMutedStyle.Render("no data"))
		}
		for i, s := range shares {
			if i == dashboardBreakdownRows {
				lines = append(lines, dashMutedStyle.Render(fmt.Sprintf("+%d more", len(shares)-i)))
				break
			}
			lines = append(lines, fmt.Sprintf("%-12s %-12s %6s", truncateRunes(s.Label, 12), strings.Repeat("█", reports.BarWidth(s.Count, shares[0].Count, 12)), s.PercentLabel()))
		}
		blocks = append(blocks, dashPanelStyle.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

func viewTrend(trend reports.Trend) string {
	lines := []string{dashTitleStyle.Render("Entries per " + string(trend.Mode))}
	if len(trend.Points) == 0 {
		return strings.Join(append(lines, dashMutedStyle.Render("no data")), "\n")
	}
	peak := trend.Peak()
	for _, p := range trend.Points {
		lines = append(lines, fmt.Sprintf("%-12s %-30s %s entries, %s users, %s returning",
			p.Label,
			strings.Repeat("█", reports.BarWidth(p.TotalEntries, peak, 30)),
			formatCount(p.TotalEntries),
			formatCount(p.TotalUsers),
			formatCount(p.ReturningUsers),
		))
	}
	return strings.Join(lines, "\n")
}

func viewTraffic(traffic reports.Traffic) string {
	lines := []string{dashTitleStyle.Render("Traffic sources")}
	if len(traffic.Details) == 0 {
		return strings.Join(append(lines, dashMutedStyle.Render("no data")), "\n")
	}
	lines = append(lines, dashMutedStyle.Render(fmt.Sprintf("%-16s %7s %7s %7s %11s  %s", "Source", "Total", "Sent", "Failed", "In Progress", "Conversion")))
	for _, d := range traffic.Details {
		rate := lipgloss.NewStyle().Foreground(bandColor(reports.ConversionBand(d.ConversionRate))).Render(reports.FormatRate(d.ConversionRate))
		lines = append(lines, fmt.Sprintf("%-16s %7d %7d %7d %11d  %s",
			truncateRunes(reports.CategoryLabel(d.Source), 16), d.Total, d.Sent, d.Failed, d.InProgress, rate))
	}
	return strings.Join(lines, "\n")
}

func describeFilters(f jobs.Filters) string {
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+value)
		}
	}
	add("status", string(f.Status))
	add("failed_stage", string(f.FailedStage))
	add("user_id", f.UserID)
	add("mobile", f.MobileNumber)
	add("job_id", f.JobID)
	add("from", f.StartDate)
	add("to", f.EndDate)
	return strings.Join(parts, " ")
}

func disabledSuffix(enabled bool) string {
	if enabled {
		return ""
	}
	return " (disabled)"
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func listWindow(total, cursor, maxRows int) (int, int) {
	if total <= maxRows {
		return 0, total
	}
	start := max(cursor-maxRows/2, 0)
	end := start + maxRows
	if end > total {
		end = total
		start = end - maxRows
	}
	return start, end
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit == 1 {
		return string(r[:1])
	}
	return string(r[:limit-1]) + "…"
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
