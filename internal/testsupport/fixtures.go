package testsupport

import (
	"fmt"
	"strconv"
	"time"

	"jobdesk/internal/jobs"
	"jobdesk/internal/reports"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

var fixtureEpoch = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

// NewJob builds a job detail with plausible defaults for id and status.
func NewJob(id int64, status jobs.Status) jobs.Detail {
	created := fixtureEpoch.Add(time.Duration(id) * time.Minute)
	detail := jobs.Detail{
		Job: jobs.Job{
			ID:                 id,
			UserID:             "user-" + itoa(id),
			MobileNumber:       Ptr("+9198765" + pad5(id)),
			Gender:             Ptr("female"),
			AttributeLove:      Ptr("music"),
			RelationshipStatus: Ptr("single"),
			Vibe:               Ptr("romantic"),
			Status:             status,
			RetryCount:         Ptr(0),
			CreatedAt:          created,
			UpdatedAt:          created.Add(5 * time.Minute),
		},
		RawSelfieURL:  Ptr("https://cdn.example/selfies/" + itoa(id) + ".jpg"),
		TermsAccepted: Ptr(true),
		VideoCount:    Ptr(1),
	}
	switch status {
	case jobs.StatusUploaded, jobs.StatusSent:
		detail.FinalVideoURL = Ptr("https://cdn.example/final/" + itoa(id) + ".mp4")
	case jobs.StatusFailed:
		detail.FailedStage = jobs.StageLipsync
		detail.LastErrorCode = Ptr("LIPSYNC_TIMEOUT")
		detail.RetryCount = Ptr(2)
	}
	return detail
}

// SampleStats is a stats report used by default in the fake backend.
func SampleStats() reports.Stats {
	return reports.Stats{
		Total:          120,
		TotalUsers:     95,
		ReturningUsers: 18,
		Breakdowns: map[reports.Dimension]map[string]int{
			reports.DimensionGender:             {"male": 50, "female": 70},
			reports.DimensionStatus:             {"sent": 80, "failed": 15, "queued": 25},
			reports.DimensionRelationshipStatus: {"single": 60, "married": 40, "complicated": 20},
			reports.DimensionAttributeLove:      {"music": 70, "travel": 50},
			reports.DimensionVibe:               {"romantic": 90, "funny": 30},
		},
	}
}

// SampleTrend is a short trend series in mode.
func SampleTrend(mode reports.TrendMode) reports.Trend {
	if mode == reports.TrendWeek {
		return reports.Trend{Mode: mode, Points: []reports.TrendPoint{
			{Label: "2026-W02", TotalEntries: 70, TotalUsers: 60, ReturningUsers: 10},
			{Label: "2026-W03", TotalEntries: 50, TotalUsers: 45, ReturningUsers: 8},
		}}
	}
	return reports.Trend{Mode: reports.TrendDay, Points: []reports.TrendPoint{
		{Label: "2026-01-12", TotalEntries: 40, TotalUsers: 35, ReturningUsers: 5},
		{Label: "2026-01-13", TotalEntries: 80, TotalUsers: 70, ReturningUsers: 13},
	}}
}

// SampleTraffic is a traffic-source report with one source in each band.
func SampleTraffic() reports.Traffic {
	return reports.Traffic{
		Sources:   map[string]int{"instagram": 60, "facebook": 40, "direct": 20},
		Mediums:   map[string]int{"social": 100, "none": 20},
		Campaigns: map[string]int{"valentines": 90, "launch": 30},
		Details: []reports.SourceDetail{
			{Source: "instagram", Total: 60, Sent: 40, Failed: 5, InProgress: 15, ConversionRate: 66.67},
			{Source: "facebook", Total: 40, Sent: 10, Failed: 10, InProgress: 20, ConversionRate: 25},
			{Source: "direct", Total: 20, Sent: 2, Failed: 8, InProgress: 10, ConversionRate: 10},
		},
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func pad5(v int64) string {
	return fmt.Sprintf("%05d", v%100000)
}
