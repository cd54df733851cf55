package main

import (
	"fmt"
	"io"
	"strconv"

	"jobdesk/internal/jobs"
)

type field struct {
	label string
	value string
}

// detailFields lists a job's detail rows. Null strings read "N/A"; a missing
// failure stage, error code, or lock reads "-".
func detailFields(d jobs.Detail) []field {
	lockedBy, lockedAt := "-", "-"
	if d.Locked() {
		lockedBy = *d.LockedBy
	}
	if d.LockedAt != nil {
		lockedAt = formatTimestamp(*d.LockedAt)
	}
	errorCode := "-"
	if d.LastErrorCode != nil {
		errorCode = orDash(*d.LastErrorCode)
	}
	return []field{
		{"Job ID", strconv.FormatInt(d.ID, 10)},
		{"User ID", orDash(d.UserID)},
		{"Mobile", orNA(d.MobileNumber)},
		{"Gender", orNA(d.Gender)},
		{"Loves", orNA(d.AttributeLove)},
		{"Relationship", orNA(d.RelationshipStatus)},
		{"Vibe", orNA(d.Vibe)},
		{"Status", d.Status.Label()},
		{"Retries", strconv.Itoa(d.Retries())},
		{"Failed stage", orDash(string(d.FailedStage))},
		{"Last error", errorCode},
		{"Terms accepted", termsLabel(d.TermsAccepted)},
		{"Video count", intOrNA(d.VideoCount)},
		{"Locked by", lockedBy},
		{"Locked at", lockedAt},
		{"Raw selfie", orNA(d.RawSelfieURL)},
		{"Normalized image", orNA(d.NormalizedImageURL)},
		{"Lipsync segment 2", orNA(d.LipsyncSeg2URL)},
		{"Lipsync segment 4", orNA(d.LipsyncSeg4URL)},
		{"Final video", orNA(d.FinalVideoURL)},
		{"Created", formatTimestamp(d.CreatedAt)},
		{"Updated", fmt.Sprintf("%s (%s)", formatTimestamp(d.UpdatedAt), formatAge(d.UpdatedAt))},
	}
}

func termsLabel(v *bool) string {
	switch {
	case v == nil:
		return "N/A"
	case *v:
		return "Yes"
	default:
		return "No"
	}
}

func intOrNA(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}

// pageSummary is the listing header, e.g. "Showing page 2 of 5 (93 total jobs)".
func pageSummary(state jobs.ListState) string {
	pages := max(state.TotalPages, 1)
	return fmt.Sprintf("Showing page %d of %d (%s total jobs)", state.Query.Page, pages, formatCount(state.Total))
}

func printJobList(out io.Writer, state jobs.ListState, colorize bool) {
	if state.Empty() {
		message := state.Message
		if message == "" {
			message = "No jobs found"
		}
		fmt.Fprintln(out, message)
		return
	}

	rows := make([][]string, 0, len(state.Items))
	for _, j := range state.Items {
		rows = append(rows, []string{
			strconv.FormatInt(j.ID, 10),
			orDash(j.UserID),
			orNA(j.MobileNumber),
			statusBadge(j.Status, colorize),
			strconv.Itoa(j.Retries()),
			orDash(string(j.FailedStage)),
			formatTimestamp(j.CreatedAt),
		})
	}
	headers := []string{"ID", "User", "Mobile", "Status", "Retries", "Failed Stage", "Created"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
	fmt.Fprintln(out, renderTable("", headers, rows, aligns))
	fmt.Fprintln(out, pageSummary(state))
	if state.Message != "" {
		fmt.Fprintln(out, state.Message)
	}
	p := state.Pagination()
	if p.Visible() {
		fmt.Fprintf(out, "Previous: %s  Next: %s\n", yesNo(p.CanPrev()), yesNo(p.CanNext()))
	}
}

func printJobDetail(out io.Writer, d jobs.Detail, colorize bool) {
	fields := detailFields(d)
	for i := range fields {
		if fields[i].label == "Status" {
			fields[i].value = statusBadge(d.Status, colorize)
		}
	}
	fmt.Fprintln(out, renderFields(fmt.Sprintf("Job #%d", d.ID), fields))
	if d.CanSendVideo() {
		fmt.Fprintf(out, "Final video ready; deliver with 'jobdesk jobs send-video %d'\n", d.ID)
	}
}

// overridePreview describes what an override will change.
func overridePreview(d jobs.Detail, target jobs.Status) string {
	after := d.Job.WithOverride(target)
	msg := fmt.Sprintf("Job #%d: %s -> %s (retries %d -> %d", d.ID, d.Status.Label(), target.Label(), d.Retries(), after.Retries())
	if d.FailedStage != "" || d.LastErrorCode != nil {
		msg += ", failure stage and error code cleared"
	}
	return msg + ")"
}
