package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"jobdesk/internal/backend"
	"jobdesk/internal/jobs"
	"jobdesk/internal/testsupport"
)

func seededJobs() []jobs.Detail {
	return []jobs.Detail{
		testsupport.NewJob(1, jobs.StatusQueued),
		testsupport.NewJob(2, jobs.StatusFailed),
		testsupport.NewJob(3, jobs.StatusUploaded),
		testsupport.NewJob(4, jobs.StatusSent),
	}
}

func TestJobsListRendersTable(t *testing.T) {
	env := setupCLITestEnv(t, seededJobs()...)

	out, _, err := runCLI(t, env.configPath, nil, "jobs", "list")
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "Queued")
	requireContains(t, out, "user-3")
	requireContains(t, out, "lipsync")
	requireContains(t, out, "Showing page 1 of 1 (4 total jobs)")
	requireNotContains(t, out, "Previous:")
}

func TestJobsListSendsFilters(t *testing.T) {
	env := setupCLITestEnv(t, seededJobs()...)

	out, _, err := runCLI(t, env.configPath, nil,
		"jobs", "list", "--status", "FAILED", "--failed-stage", "lipsync", "--start-date", "2026-01-01", "--page-size", "10")
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "user-2")
	requireNotContains(t, out, "user-1")

	req, ok := env.backend.LastRequest(testsupport.RouteList)
	if !ok {
		t.Fatal("expected a listing request")
	}
	checks := map[string]string{
		"status":       "failed",
		"failed_stage": "lipsync",
		"start_date":   "2026-01-01",
		"page":         "1",
		"page_size":    "10",
	}
	for key, want := range checks {
		if got := req.Query.Get(key); got != want {
			t.Fatalf("query %s: expected %q, got %q", key, want, got)
		}
	}
	if req.Query.Has("user_id") || req.Query.Has("end_date") {
		t.Fatalf("unset filters must be omitted, got %v", req.Query)
	}
}

func TestJobsListRejectsBadFilters(t *testing.T) {
	env := setupCLITestEnv(t, seededJobs()...)

	cases := [][]string{
		{"jobs", "list", "--status", "paused"},
		{"jobs", "list", "--failed-stage", "upload"},
		{"jobs", "list", "--page-size", "25"},
		{"jobs", "list", "--start-date", "01/02/2026"},
	}
	for _, args := range cases {
		if _, _, err := runCLI(t, env.configPath, nil, args...); !errors.Is(err, jobs.ErrInvalidFilter) {
			t.Fatalf("%v: expected ErrInvalidFilter, got %v", args, err)
		}
	}
	if n := env.backend.Count(testsupport.RouteList); n != 0 {
		t.Fatalf("invalid filters must not reach the backend, got %d requests", n)
	}
}

func TestJobsListEmptyState(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, nil, "jobs", "list")
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "No jobs found")
}

func TestJobsListJSONPaginates(t *testing.T) {
	var details []jobs.Detail
	for id := int64(1); id <= 12; id++ {
		details = append(details, testsupport.NewJob(id, jobs.StatusQueued))
	}
	env := setupCLITestEnv(t, details...)

	out, _, err := runCLI(t, env.configPath, nil, "--json", "jobs", "list", "--page-size", "10", "--page", "2")
	if err != nil {
		t.Fatalf("jobs list --json: %v", err)
	}
	var payload jobListJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if payload.Page != 2 || payload.PageSize != 10 || payload.Total != 12 || payload.TotalPages != 2 {
		t.Fatalf("unexpected pagination %+v", payload)
	}
	if len(payload.Items) != 2 || payload.Items[0].ID != 2 || payload.Items[1].ID != 1 {
		t.Fatalf("unexpected second page %+v", payload.Items)
	}
	if payload.Items[0].Status == nil || *payload.Items[0].Status != "queued" {
		t.Fatalf("expected raw status value, got %+v", payload.Items[0].Status)
	}
}

func TestJobsListBackendFailure(t *testing.T) {
	env := setupCLITestEnv(t, seededJobs()...)
	env.backend.Fail(testsupport.RouteList, http.StatusInternalServerError, "database unavailable")

	_, _, err := runCLI(t, env.configPath, nil, "jobs", "list")
	if err == nil {
		t.Fatal("expected listing failure")
	}
	requireContains(t, err.Error(), jobs.LoadFailedMessage)
	requireContains(t, err.Error(), "database unavailable")
}

func TestJobsShowRendersDetail(t *testing.T) {
	job := testsupport.NewJob(3, jobs.StatusUploaded)
	job.Gender = nil
	job.TermsAccepted = testsupport.Ptr(false)
	env := setupCLITestEnv(t, job)

	out, _, err := runCLI(t, env.configPath, nil, "jobs", "show", "3")
	if err != nil {
		t.Fatalf("jobs show: %v", err)
	}
	requireContains(t, out, "Job #3")
	requireContains(t, out, "Uploaded")
	requireContains(t, out, "N/A")
	requireContains(t, out, "https://cdn.example/final/3.mp4")
	requireContains(t, out, "deliver with 'jobdesk jobs send-video 3'")

	fields := detailFields(job)
	values := map[string]string{}
	for _, f := range fields {
		values[f.label] = f.value
	}
	if values["Gender"] != "N/A" || values["Terms accepted"] != "No" || values["Failed stage"] != "-" || values["Locked by"] != "-" {
		t.Fatalf("unexpected detail fields %v", values)
	}
}

func TestJobsShowKeepsUnrecognisedFailedStage(t *testing.T) {
	job := testsupport.NewJob(6, jobs.StatusFailed)
	job.FailedStage = "upscale"
	env := setupCLITestEnv(t, job)

	out, _, err := runCLI(t, env.configPath, nil, "jobs", "show", "6")
	if err != nil {
		t.Fatalf("jobs show: %v", err)
	}
	requireContains(t, out, "upscale")
}

func TestJobsShowJSONAndNotFound(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewJob(4, jobs.StatusSent))

	out, _, err := runCLI(t, env.configPath, nil, "--json", "jobs", "show", "4")
	if err != nil {
		t.Fatalf("jobs show --json: %v", err)
	}
	var payload jobDetailJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode detail: %v\n%s", err, out)
	}
	if payload.ID != 4 || payload.CanSendVideo {
		t.Fatalf("sent job must not offer delivery: %+v", payload)
	}

	_, _, err = runCLI(t, env.configPath, nil, "jobs", "show", "99")
	var reqErr *backend.RequestError
	if !errors.As(err, &reqErr) || !reqErr.NotFound() {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, _, err := runCLI(t, env.configPath, nil, "jobs", "show", "abc"); err == nil || !strings.Contains(err.Error(), "invalid job id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestJobsSetStatusWithYes(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewJob(2, jobs.StatusFailed))

	out, _, err := runCLI(t, env.configPath, nil, "jobs", "set-status", "2", "queued", "--yes")
	if err != nil {
		t.Fatalf("set-status: %v", err)
	}
	requireContains(t, out, "Job #2: Failed -> Queued (retries 2 -> 3, failure stage and error code cleared)")
	requireContains(t, out, "Job 2 status updated to queued")
	requireContains(t, out, "Job #2 is now Queued (retries 3)")

	req, ok := env.backend.LastRequest(testsupport.RouteUpdate)
	if !ok || req.Method != http.MethodPatch || req.Query.Get("job_id") != "2" || req.Query.Get("status") != "queued" {
		t.Fatalf("unexpected update request %+v", req)
	}
	stored, _ := env.backend.Job(2)
	if stored.Status != jobs.StatusQueued || stored.Retries() != 3 || stored.FailedStage != "" || stored.LastErrorCode != nil {
		t.Fatalf("override not applied: %+v", stored.Job)
	}
}

func TestJobsSetStatusConfirmation(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewJob(1, jobs.StatusQueued))

	out, _, err := runCLI(t, env.configPath, strings.NewReader("n\n"), "jobs", "set-status", "1", "sent")
	if err != nil {
		t.Fatalf("declined set-status: %v", err)
	}
	requireContains(t, out, "Override cancelled")
	if n := env.backend.Count(testsupport.RouteUpdate); n != 0 {
		t.Fatalf("declined override must not be sent, got %d", n)
	}

	out, _, err = runCLI(t, env.configPath, strings.NewReader("y\n"), "jobs", "set-status", "1", "sent")
	if err != nil {
		t.Fatalf("confirmed set-status: %v", err)
	}
	requireContains(t, out, "Job #1 is now Sent (retries 1)")
}

func TestJobsSetStatusRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewJob(1, jobs.StatusQueued))

	_, _, err := runCLI(t, env.configPath, nil, "jobs", "set-status", "1", "done", "--yes")
	if !errors.Is(err, jobs.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if len(env.backend.Requests()) != 0 {
		t.Fatal("invalid status must not reach the backend")
	}
}

func TestJobsSetStatusJSONKeepsPromptOffStdout(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewJob(1, jobs.StatusQueued))

	out, errOut, err := runCLI(t, env.configPath, nil, "--json", "jobs", "set-status", "1", "wait", "--yes")
	if err != nil {
		t.Fatalf("set-status --json: %v", err)
	}
	requireContains(t, errOut, "Job #1: Queued -> Wait")
	var payload struct {
		Message string        `json:"message"`
		Job     jobDetailJSON `json:"job"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode override: %v\n%s", err, out)
	}
	if payload.Job.Status == nil || *payload.Job.Status != "wait" || payload.Job.RetryCount != 1 {
		t.Fatalf("unexpected job after override %+v", payload.Job)
	}
}

func TestJobsSendVideo(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewJob(3, jobs.StatusUploaded))

	out, _, err := runCLI(t, env.configPath, nil, "jobs", "send-video", "3", "--yes")
	if err != nil {
		t.Fatalf("send-video: %v", err)
	}
	requireContains(t, out, "Video sent successfully")
	if stored, _ := env.backend.Job(3); stored.Status != jobs.StatusSent {
		t.Fatalf("expected job delivered, got %s", stored.Status)
	}

	// Once sent, delivery is no longer offered and no request is made.
	before := env.backend.Count(testsupport.RouteSend)
	_, _, err = runCLI(t, env.configPath, nil, "jobs", "send-video", "3", "--yes")
	if !errors.Is(err, jobs.ErrDeliveryUnavailable) {
		t.Fatalf("expected ErrDeliveryUnavailable, got %v", err)
	}
	if env.backend.Count(testsupport.RouteSend) != before {
		t.Fatal("ineligible delivery must not reach the backend")
	}
}

func TestJobsSendVideoDeclined(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewJob(3, jobs.StatusUploaded))

	out, _, err := runCLI(t, env.configPath, strings.NewReader("no\n"), "jobs", "send-video", "3")
	if err != nil {
		t.Fatalf("declined send-video: %v", err)
	}
	requireContains(t, out, "Send cancelled")
	if env.backend.Count(testsupport.RouteSend) != 0 {
		t.Fatal("declined delivery must not reach the backend")
	}
}

func TestJobsSendVideoBackendDetail(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.NewJob(3, jobs.StatusUploaded))
	env.backend.Fail(testsupport.RouteSend, http.StatusBadRequest, "WhatsApp delivery window closed")

	_, _, err := runCLI(t, env.configPath, nil, "jobs", "send-video", "3", "--yes")
	if err == nil {
		t.Fatal("expected send failure")
	}
	requireContains(t, err.Error(), "WhatsApp delivery window closed")
}

func TestJobsStatusesSkipsSession(t *testing.T) {
	out, _, err := runCLI(t, "", nil, "jobs", "statuses")
	if err != nil {
		t.Fatalf("jobs statuses: %v", err)
	}
	for _, status := range jobs.AllStatuses() {
		requireContains(t, out, string(status))
	}
	requireContains(t, out, "Lipsync Processing")
}
