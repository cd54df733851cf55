package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"jobdesk/internal/jobs"
	"jobdesk/internal/reports"
)

// dateTimeFormat is used when this package writes timestamps.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses backend timestamps. Values without a zone are UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(dateTimeFormat)
}

// ToJob converts a listing row. Unparseable timestamps are left zero.
func ToJob(dto VideoJob) jobs.Job {
	job := jobs.Job{
		ID:                 dto.ID,
		UserID:             dto.UserID,
		MobileNumber:       dto.MobileNumber,
		Gender:             dto.Gender,
		AttributeLove:      dto.AttributeLove,
		RelationshipStatus: dto.RelationshipStatus,
		Vibe:               dto.Vibe,
		RetryCount:         dto.RetryCount,
		LastErrorCode:      dto.LastErrorCode,
	}
	if dto.Status != nil {
		job.Status = jobs.StatusFromWire(*dto.Status)
	}
	if dto.FailedStage != nil {
		job.FailedStage = jobs.FailedStageFromWire(*dto.FailedStage)
	}
	job.CreatedAt, _ = ParseTimestamp(dto.CreatedAt)
	job.UpdatedAt, _ = ParseTimestamp(dto.UpdatedAt)
	return job
}

// ToDetail converts a single-job payload.
func ToDetail(dto VideoJobDetail) jobs.Detail {
	detail := jobs.Detail{
		Job:                ToJob(dto.VideoJob),
		RawSelfieURL:       dto.RawSelfieURL,
		NormalizedImageURL: dto.NormalizedImageURL,
		LipsyncSeg2URL:     dto.LipsyncSeg2URL,
		LipsyncSeg4URL:     dto.LipsyncSeg4URL,
		FinalVideoURL:      dto.FinalVideoURL,
		TermsAccepted:      dto.TermsAccepted,
		VideoCount:         dto.VideoCount,
		LockedBy:           dto.LockedBy,
	}
	if dto.LockedAt != nil {
		if ts, err := ParseTimestamp(*dto.LockedAt); err == nil && !ts.IsZero() {
			detail.LockedAt = &ts
		}
	}
	return detail
}

// ToPage converts a listing envelope.
func ToPage(dto JobListResponse) jobs.Page {
	page := jobs.Page{
		Items:      make([]jobs.Job, 0, len(dto.Items)),
		Total:      dto.Total,
		TotalPages: dto.TotalPages,
		Message:    dto.Message,
	}
	for _, item := range dto.Items {
		page.Items = append(page.Items, ToJob(item))
	}
	return page
}

// FromJob converts a domain job back to its wire form.
func FromJob(job jobs.Job) VideoJob {
	dto := VideoJob{
		ID:                 job.ID,
		UserID:             job.UserID,
		MobileNumber:       job.MobileNumber,
		Gender:             job.Gender,
		AttributeLove:      job.AttributeLove,
		RelationshipStatus: job.RelationshipStatus,
		Vibe:               job.Vibe,
		RetryCount:         job.RetryCount,
		LastErrorCode:      job.LastErrorCode,
		CreatedAt:          formatTimestamp(job.CreatedAt),
		UpdatedAt:          formatTimestamp(job.UpdatedAt),
	}
	if job.Status != "" {
		status := string(job.Status)
		dto.Status = &status
	}
	if job.FailedStage != "" {
		stage := string(job.FailedStage)
		dto.FailedStage = &stage
	}
	return dto
}

// FromDetail converts a domain detail back to its wire form.
func FromDetail(detail jobs.Detail) VideoJobDetail {
	dto := VideoJobDetail{
		VideoJob:           FromJob(detail.Job),
		RawSelfieURL:       detail.RawSelfieURL,
		NormalizedImageURL: detail.NormalizedImageURL,
		LipsyncSeg2URL:     detail.LipsyncSeg2URL,
		LipsyncSeg4URL:     detail.LipsyncSeg4URL,
		FinalVideoURL:      detail.FinalVideoURL,
		TermsAccepted:      detail.TermsAccepted,
		VideoCount:         detail.VideoCount,
		LockedBy:           detail.LockedBy,
	}
	if detail.LockedAt != nil {
		ts := formatTimestamp(*detail.LockedAt)
		dto.LockedAt = &ts
	}
	return dto
}

// ToStats converts the stats envelope.
func ToStats(dto StatsResponse) reports.Stats {
	return reports.Stats{
		Range:          reports.DateRange{Start: deref(dto.StartDate), End: deref(dto.EndDate)},
		Total:          dto.Counts.Total,
		TotalUsers:     dto.Counts.TotalUsers,
		ReturningUsers: dto.Counts.ReturningUsers,
		Breakdowns: map[reports.Dimension]map[string]int{
			reports.DimensionGender:             nonNil(dto.Counts.Gender),
			reports.DimensionStatus:             nonNil(dto.Counts.Status),
			reports.DimensionRelationshipStatus: nonNil(dto.Counts.RelationshipStatus),
			reports.DimensionAttributeLove:      nonNil(dto.Counts.AttributeLove),
			reports.DimensionVibe:               nonNil(dto.Counts.Vibe),
		},
	}
}

// FromStats converts stats back to the wire envelope.
func FromStats(stats reports.Stats) StatsResponse {
	dto := StatsResponse{
		Counts: ReportCounts{
			Total:              stats.Total,
			TotalUsers:         stats.TotalUsers,
			ReturningUsers:     stats.ReturningUsers,
			Gender:             nonNil(stats.Breakdowns[reports.DimensionGender]),
			Status:             nonNil(stats.Breakdowns[reports.DimensionStatus]),
			RelationshipStatus: nonNil(stats.Breakdowns[reports.DimensionRelationshipStatus]),
			AttributeLove:      nonNil(stats.Breakdowns[reports.DimensionAttributeLove]),
			Vibe:               nonNil(stats.Breakdowns[reports.DimensionVibe]),
		},
	}
	if stats.Range.Start != "" {
		dto.StartDate = &stats.Range.Start
	}
	if stats.Range.End != "" {
		dto.EndDate = &stats.Range.End
	}
	return dto
}

// ParseTrend decodes a trend payload. Bucket labels are read from "label",
// falling back to "date", "week", or "period" as older backends used.
func ParseTrend(body []byte) (reports.Trend, error) {
	if !gjson.ValidBytes(body) {
		return reports.Trend{}, fmt.Errorf("decode trend: invalid json")
	}
	root := gjson.ParseBytes(body)
	mode, _ := reports.ParseTrendMode(root.Get("mode").String())
	trend := reports.Trend{Mode: mode}
	root.Get("data").ForEach(func(_, point gjson.Result) bool {
		trend.Points = append(trend.Points, reports.TrendPoint{
			Label:          firstString(point, "label", "date", "week", "period"),
			TotalEntries:   int(point.Get("total_entries").Int()),
			TotalUsers:     int(point.Get("total_users").Int()),
			ReturningUsers: int(point.Get("returning_users").Int()),
		})
		return true
	})
	return trend, nil
}

// FromTrend converts a trend back to the wire envelope.
func FromTrend(trend reports.Trend) TrendResponse {
	dto := TrendResponse{Mode: string(trend.Mode), Data: make([]TrendPoint, 0, len(trend.Points))}
	for _, p := range trend.Points {
		dto.Data = append(dto.Data, TrendPoint(p))
	}
	return dto
}

// ToTraffic converts the traffic-source envelope. A missing in-progress count
// is derived as total minus sent minus failed.
func ToTraffic(dto TrafficSourcesResponse) reports.Traffic {
	traffic := reports.Traffic{
		Range:     reports.DateRange{Start: deref(dto.StartDate), End: deref(dto.EndDate)},
		Sources:   nonNil(dto.UTMSource),
		Mediums:   nonNil(dto.UTMMedium),
		Campaigns: nonNil(dto.UTMCampaign),
		Details:   make([]reports.SourceDetail, 0, len(dto.SourceDetails)),
	}
	for _, d := range dto.SourceDetails {
		detail := reports.SourceDetail{
			Source:         d.Source,
			Total:          d.Total,
			Sent:           d.Sent,
			Failed:         d.Failed,
			InProgress:     d.Total - d.Sent - d.Failed,
			ConversionRate: d.ConversionRate,
		}
		if d.InProgress != nil {
			detail.InProgress = *d.InProgress
		}
		traffic.Details = append(traffic.Details, detail)
	}
	return traffic
}

// FromTraffic converts traffic data back to the wire envelope.
func FromTraffic(traffic reports.Traffic) TrafficSourcesResponse {
	dto := TrafficSourcesResponse{
		UTMSource:     nonNil(traffic.Sources),
		UTMMedium:     nonNil(traffic.Mediums),
		UTMCampaign:   nonNil(traffic.Campaigns),
		SourceDetails: make([]SourceDetail, 0, len(traffic.Details)),
	}
	if traffic.Range.Start != "" {
		dto.StartDate = &traffic.Range.Start
	}
	if traffic.Range.End != "" {
		dto.EndDate = &traffic.Range.End
	}
	for _, d := range traffic.Details {
		inProgress := d.InProgress
		dto.SourceDetails = append(dto.SourceDetails, SourceDetail{
			Source:         d.Source,
			Total:          d.Total,
			Sent:           d.Sent,
			Failed:         d.Failed,
			InProgress:     &inProgress,
			ConversionRate: d.ConversionRate,
		})
	}
	return dto
}

func firstString(result gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := result.Get(key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
