package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"jobdesk/internal/jobs"
)

const (
	filterStatus = iota
	filterFailedStage
	filterUserID
	filterMobile
	filterJobID
	filterStartDate
	filterEndDate
	filterPageSize
)

var filterLabels = []string{
	filterStatus:      "Status",
	filterFailedStage: "Failed stage",
	filterUserID:      "User ID",
	filterMobile:      "Mobile",
	filterJobID:       "Job ID",
	filterStartDate:   "Start date",
	filterEndDate:     "End date",
	filterPageSize:    "Page size",
}

type filterForm struct {
	inputs []textinput.Model
	index  int
	err    string
}

func newFilterForm(q jobs.Query, width int) *filterForm {
	values := []string{
		filterStatus:      string(q.Filters.Status),
		filterFailedStage: string(q.Filters.FailedStage),
		filterUserID:      q.Filters.UserID,
		filterMobile:      q.Filters.MobileNumber,
		filterJobID:       q.Filters.JobID,
		filterStartDate:   q.Filters.StartDate,
		filterEndDate:     q.Filters.EndDate,
		filterPageSize:    strconv.Itoa(q.PageSize),
	}
	placeholders := []string{
		filterStatus:      "any",
		filterFailedStage: "photo, lipsync, stitch, delivery",
		filterUserID:      "any",
		filterMobile:      "any",
		filterJobID:       "any",
		filterStartDate:   "YYYY-MM-DD",
		filterEndDate:     "YYYY-MM-DD",
		filterPageSize:    fmt.Sprint(jobs.PageSizes),
	}

	f := &filterForm{inputs: make([]textinput.Model, len(filterLabels))}
	for i := range f.inputs {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = placeholders[i]
		input.CharLimit = 64
		input.SetValue(values[i])
		f.inputs[i] = input
	}
	f.resize(width)
	f.inputs[0].Focus()
	return f
}

func (f *filterForm) resize(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = clampInt(width-24, 20, 60)
	}
}

func (f *filterForm) move(delta int) tea.Cmd {
	f.inputs[f.index].Blur()
	f.index = (f.index + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.index].Focus()
}

func (f *filterForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.index], cmd = f.inputs[f.index].Update(msg)
	f.err = ""
	return cmd
}

func (f *filterForm) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

// values parses the form into filters and a page size.
func (f *filterForm) values() (jobs.Filters, int, error) {
	filters := jobs.Filters{
		UserID:       f.value(filterUserID),
		MobileNumber: f.value(filterMobile),
		JobID:        f.value(filterJobID),
		StartDate:    f.value(filterStartDate),
		EndDate:      f.value(filterEndDate),
	}
	if raw := f.value(filterStatus); raw != "" {
		status, ok := jobs.ParseStatus(raw)
		if !ok {
			return filters, 0, fmt.Errorf("unknown status %q", raw)
		}
		filters.Status = status
	}
	if raw := f.value(filterFailedStage); raw != "" {
		stage, ok := jobs.ParseFailedStage(raw)
		if !ok {
			return filters, 0, fmt.Errorf("unknown failed stage %q", raw)
		}
		filters.FailedStage = stage
	}
	size := jobs.DefaultPageSize
	if raw := f.value(filterPageSize); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filters, 0, fmt.Errorf("page size must be a number, got %q", raw)
		}
		size = n
	}
	return filters, size, nil
}
