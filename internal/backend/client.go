package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobdesk/internal/api"
	"jobdesk/internal/config"
	"jobdesk/internal/jobs"
	"jobdesk/internal/logging"
	"jobdesk/internal/reports"
)

const basePath = "/api/v1/video-jobs"

// HTTPDoer describes the HTTP client used by the backend client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the admin token and is told when the backend rejects it.
type TokenSource interface {
	Token() (string, error)
	Invalidate(reason string) error
}

// Client talks to the video-job admin API.
type Client struct {
	baseURL   string
	userAgent string
	client    HTTPDoer
	tokens    TokenSource
	logger    *slog.Logger
	requestID func() string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.client = doer }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logging.NewComponentLogger(logger, "backend") }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRequestIDs overrides request id generation.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) { c.requestID = fn }
}

// New builds a client for baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		userAgent: "jobdesk",
		client:    http.DefaultClient,
		tokens:    tokens,
		logger:    logging.NewComponentLogger(nil, "backend"),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client using the [api] settings.
func NewFromConfig(cfg *config.Config, tokens TokenSource, logger *slog.Logger) *Client {
	return New(cfg.API.BaseURL, tokens,
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		WithUserAgent(cfg.API.UserAgent),
		WithLogger(logger),
	)
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListJobs fetches one page of jobs matching q.
func (c *Client) ListJobs(ctx context.Context, q jobs.Query) (jobs.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("page_size", strconv.Itoa(q.PageSize))
	f := q.Filters
	setIf(params, "status", string(f.Status))
	setIf(params, "failed_stage", string(f.FailedStage))
	setIf(params, "user_id", f.UserID)
	setIf(params, "mobile_number", f.MobileNumber)
	setIf(params, "job_id", f.JobID)
	setIf(params, "start_date", f.StartDate)
	setIf(params, "end_date", f.EndDate)

	var resp api.JobListResponse
	if err := c.getJSON(ctx, "list jobs", basePath+"/list", params, &resp); err != nil {
		return jobs.Page{}, err
	}
	return api.ToPage(resp), nil
}

// GetJob fetches a single job's detail.
func (c *Client) GetJob(ctx context.Context, id int64) (jobs.Detail, error) {
	var resp api.VideoJobDetail
	path := basePath + "/" + strconv.FormatInt(id, 10)
	if err := c.getJSON(ctx, "get job", path, nil, &resp); err != nil {
		return jobs.Detail{}, err
	}
	return api.ToDetail(resp), nil
}

// UpdateStatus overrides a job's status and returns the backend message.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status jobs.Status) (string, error) {
	params := url.Values{}
	params.Set("job_id", strconv.FormatInt(id, 10))
	params.Set("status", string(status))
	body, err := c.do(ctx, "update job status", http.MethodPatch, basePath+"/update-job", params)
	if err != nil {
		return "", err
	}
	return messageField(body), nil
}

// SendVideo asks the backend to deliver a job's final video.
func (c *Client) SendVideo(ctx context.Context, id int64) (string, error) {
	path := basePath + "/" + strconv.FormatInt(id, 10) + "/send-video"
	body, err := c.do(ctx, "send video", http.MethodPost, path, nil)
	if err != nil {
		return "", err
	}
	return messageField(body), nil
}

// Stats fetches aggregate counts for r.
func (c *Client) Stats(ctx context.Context, r reports.DateRange) (reports.Stats, error) {
	var resp api.StatsResponse
	if err := c.getJSON(ctx, "report stats", basePath+"/reports/stats", rangeParams(r), &resp); err != nil {
		return reports.Stats{}, err
	}
	return api.ToStats(resp), nil
}

// Trend fetches the time series for r bucketed by mode.
func (c *Client) Trend(ctx context.Context, r reports.DateRange, mode reports.TrendMode) (reports.Trend, error) {
	params := rangeParams(r)
	params.Set("mode", string(mode))
	body, err := c.do(ctx, "report trend", http.MethodGet, basePath+"/reports/trend", params)
	if err != nil {
		return reports.Trend{}, err
	}
	trend, err := api.ParseTrend(body)
	if err != nil {
		return reports.Trend{}, fmt.Errorf("report trend: %w", err)
	}
	if trend.Mode == "" {
		trend.Mode = mode
	}
	return trend, nil
}

// TrafficSources fetches the UTM breakdown for r.
func (c *Client) TrafficSources(ctx context.Context, r reports.DateRange) (reports.Traffic, error) {
	var resp api.TrafficSourcesResponse
	if err := c.getJSON(ctx, "report traffic sources", basePath+"/reports/traffic-sources", rangeParams(r), &resp); err != nil {
		return reports.Traffic{}, err
	}
	return api.ToTraffic(resp), nil
}

// ExportCSV downloads the CSV report for r.
func (c *Client) ExportCSV(ctx context.Context, r reports.DateRange) ([]byte, error) {
	return c.do(ctx, "export csv", http.MethodGet, basePath+"/reports/csv", rangeParams(r))
}

func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, out any) error {
	body, err := c.do(ctx, op, http.MethodGet, path, params)
	if err != nil {
		return err
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, params url.Values) ([]byte, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	requestID := c.requestID()
	ctx = logging.WithRequestID(ctx, requestID)
	logger := logging.WithContext(ctx, c.logger)

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warn("backend request failed",
			logging.String(logging.FieldEndpoint, path),
			logging.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}
	logger.Debug("backend request",
		logging.String("method", method),
		logging.String(logging.FieldEndpoint, path),
		logging.Int(logging.FieldStatusCode, resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if ierr := c.tokens.Invalidate(fmt.Sprintf("%s returned %d", op, resp.StatusCode)); ierr != nil {
			logger.Warn("failed to clear rejected token", logging.Error(ierr))
		}
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return nil, &RequestError{Op: op, StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}
	return body, nil
}

func rangeParams(r reports.DateRange) url.Values {
	params := url.Values{}
	setIf(params, "start_date", r.Start)
	setIf(params, "end_date", r.End)
	return params
}

func setIf(params url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		params.Set(key, value)
	}
}
