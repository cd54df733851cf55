package testsupport

import (
	"cmp"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"jobdesk/internal/api"
	"jobdesk/internal/jobs"
	"jobdesk/internal/reports"
)

// Route names the fake backend's endpoints for failure injection and
// request accounting.
type Route string

const (
	RouteList    Route = "list"
	RouteDetail  Route = "detail"
	RouteUpdate  Route = "update"
	RouteSend    Route = "send"
	RouteStats   Route = "stats"
	RouteTrend   Route = "trend"
	RouteTraffic Route = "traffic"
	RouteCSV     Route = "csv"
)

// DefaultToken is the bearer token the fake backend accepts unless changed.
const DefaultToken = "test-admin-token"

// Request records one call the fake backend received.
type Request struct {
	Route     Route
	Method    string
	Path      string
	Query     url.Values
	Auth      string
	RequestID string
}

type failure struct {
	status int
	detail string
}

// Backend is an in-memory implementation of the video-job admin API.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	token    string
	authCode int
	jobs     map[int64]jobs.Detail
	stats    reports.Stats
	trends   map[reports.TrendMode]reports.Trend
	traffic  reports.Traffic
	csv      []byte
	failures map[Route]failure
	requests []Request
}

// NewBackend starts a fake backend seeded with details and sample reports.
// The server is closed when the test ends.
func NewBackend(t testing.TB, details ...jobs.Detail) *Backend {
	t.Helper()

	b := &Backend{
		token:    DefaultToken,
		jobs:     make(map[int64]jobs.Detail),
		stats:    SampleStats(),
		trends:   map[reports.TrendMode]reports.Trend{reports.TrendDay: SampleTrend(reports.TrendDay), reports.TrendWeek: SampleTrend(reports.TrendWeek)},
		traffic:  SampleTraffic(),
		csv:      []byte("id,user_id,status\n1,user-1,sent\n"),
		failures: make(map[Route]failure),
	}
	for _, d := range details {
		b.jobs[d.ID] = d
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the server root.
func (b *Backend) URL() string {
	return b.Server.URL
}

// SetToken changes the accepted bearer token.
func (b *Backend) SetToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

// RejectAll makes every request fail with code (401 or 403).
func (b *Backend) RejectAll(code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.authCode = code
}

// Fail makes route answer with status and a {"detail": ...} body until cleared.
func (b *Backend) Fail(route Route, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{status: status, detail: detail}
}

// ClearFailure removes an injected failure.
func (b *Backend) ClearFailure(route Route) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, route)
}

// Job returns the stored state of id.
func (b *Backend) Job(id int64) (jobs.Detail, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.jobs[id]
	return d, ok
}

// PutJob inserts or replaces a job.
func (b *Backend) PutJob(d jobs.Detail) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobs[d.ID] = d
}

// SetStats replaces the stats report.
func (b *Backend) SetStats(stats reports.Stats) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = stats
}

// SetCSV replaces the CSV export body.
func (b *Backend) SetCSV(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.csv = data
}

// Requests returns every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count returns how many requests hit route.
func (b *Backend) Count(route Route) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Route == route {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent request to route.
func (b *Backend) LastRequest(route Route) (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].Route == route {
			return b.requests[i], true
		}
	}
	return Request{}, false
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Route("/api/v1/video-jobs", func(r chi.Router) {
		r.Get("/list", b.handle(RouteList, b.list))
		r.Patch("/update-job", b.handle(RouteUpdate, b.update))
		r.Route("/reports", func(r chi.Router) {
			r.Get("/stats", b.handle(RouteStats, b.reportStats))
			r.Get("/trend", b.handle(RouteTrend, b.reportTrend))
			r.Get("/traffic-sources", b.handle(RouteTraffic, b.reportTraffic))
			r.Get("/csv", b.handle(RouteCSV, b.reportCSV))
		})
		r.Get("/{id}", b.handle(RouteDetail, b.detail))
		r.Post("/{id}/send-video", b.handle(RouteSend, b.sendVideo))
	})
	return r
}

// handle records the request, enforces the bearer token, and applies any
// injected failure before calling next.
func (b *Backend) handle(route Route, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Route:     route,
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.Query(),
			Auth:      auth,
			RequestID: chimw.GetReqID(r.Context()),
		})
		token, authCode := b.token, b.authCode
		fail, failing := b.failures[route]
		b.mu.Unlock()

		if authCode != 0 {
			writeDetail(w, authCode, "Not authenticated")
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if failing {
			writeDetail(w, fail.status, fail.detail)
			return
		}
		next(w, r)
	}
}

func (b *Backend) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	size := atoiDefault(q.Get("page_size"), jobs.DefaultPageSize)
	if page < 1 || size < 1 {
		writeDetail(w, http.StatusUnprocessableEntity, "page and page_size must be positive")
		return
	}

	b.mu.Lock()
	matched := make([]jobs.Detail, 0, len(b.jobs))
	for _, d := range b.jobs {
		if matches(d, q) {
			matched = append(matched, d)
		}
	}
	b.mu.Unlock()

	slices.SortFunc(matched, func(a, c jobs.Detail) int { return cmp.Compare(c.ID, a.ID) })
	total := len(matched)
	totalPages := (total + size - 1) / size
	resp := api.JobListResponse{Items: []api.VideoJob{}, Total: total, TotalPages: totalPages}
	start := (page - 1) * size
	for i := start; i < min(start+size, total); i++ {
		resp.Items = append(resp.Items, api.FromJob(matched[i].Job))
	}
	if total == 0 {
		resp.Message = "No jobs found"
	}
	writeJSON(w, http.StatusOK, resp)
}

func matches(d jobs.Detail, q url.Values) bool {
	if v := q.Get("status"); v != "" && string(d.Status) != v {
		return false
	}
	if v := q.Get("failed_stage"); v != "" && string(d.FailedStage) != v {
		return false
	}
	if v := q.Get("user_id"); v != "" && d.UserID != v {
		return false
	}
	if v := q.Get("mobile_number"); v != "" && (d.MobileNumber == nil || !strings.Contains(*d.MobileNumber, v)) {
		return false
	}
	if v := q.Get("job_id"); v != "" && strconv.FormatInt(d.ID, 10) != v {
		return false
	}
	day := d.CreatedAt.UTC().Format(time.DateOnly)
	if v := q.Get("start_date"); v != "" && day < v {
		return false
	}
	if v := q.Get("end_date"); v != "" && day > v {
		return false
	}
	return true
}

func (b *Backend) detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "job id must be an integer")
		return
	}
	d, ok := b.Job(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, api.FromDetail(d))
}

func (b *Backend) update(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := strconv.ParseInt(q.Get("job_id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "job_id must be an integer")
		return
	}
	status, ok := jobs.ParseStatus(q.Get("status"))
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid status")
		return
	}

	b.mu.Lock()
	d, found := b.jobs[id]
	if found {
		d.Job = d.Job.WithOverride(status)
		d.UpdatedAt = time.Now().UTC()
		b.jobs[id] = d
	}
	b.mu.Unlock()

	if !found {
		writeDetail(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: fmt.Sprintf("Job %d status updated to %s", id, status)})
}

func (b *Backend) sendVideo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "job id must be an integer")
		return
	}

	b.mu.Lock()
	d, found := b.jobs[id]
	var problem string
	switch {
	case !found:
	case !d.HasFinalVideo():
		problem = "Final video not available"
	case d.Status == jobs.StatusSent:
		problem = "Video already sent"
	default:
		d.Status = jobs.StatusSent
		d.UpdatedAt = time.Now().UTC()
		b.jobs[id] = d
	}
	b.mu.Unlock()

	switch {
	case !found:
		writeDetail(w, http.StatusNotFound, "Job not found")
	case problem != "":
		writeDetail(w, http.StatusBadRequest, problem)
	default:
		writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Video sent successfully"})
	}
}

func (b *Backend) reportStats(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	stats := b.stats
	b.mu.Unlock()
	stats.Range = rangeFrom(r)
	writeJSON(w, http.StatusOK, api.FromStats(stats))
}

func (b *Backend) reportTrend(w http.ResponseWriter, r *http.Request) {
	mode, ok := reports.ParseTrendMode(r.URL.Query().Get("mode"))
	if !ok {
		writeDetail(w, http.StatusBadRequest, "mode must be day or week")
		return
	}
	b.mu.Lock()
	trend := b.trends[mode]
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, api.FromTrend(trend))
}

func (b *Backend) reportTraffic(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	traffic := b.traffic
	b.mu.Unlock()
	traffic.Range = rangeFrom(r)
	writeJSON(w, http.StatusOK, api.FromTraffic(traffic))
}

func (b *Backend) reportCSV(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	data := append([]byte(nil), b.csv...)
	b.mu.Unlock()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+rangeFrom(r).CSVFilename())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func rangeFrom(r *http.Request) reports.DateRange {
	q := r.URL.Query()
	return reports.DateRange{Start: q.Get("start_date"), End: q.Get("end_date")}
}

func atoiDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, api.ErrorResponse{Detail: detail})
}
