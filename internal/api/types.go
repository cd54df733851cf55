package api

// VideoJob is a listing row as sent by the backend.
type VideoJob struct {
	ID                 int64   `json:"id"`
	UserID             string  `json:"user_id"`
	MobileNumber       *string `json:"mobile_number"`
	Gender             *string `json:"gender"`
	AttributeLove      *string `json:"attribute_love"`
	RelationshipStatus *string `json:"relationship_status"`
	Vibe               *string `json:"vibe"`
	Status             *string `json:"status"`
	RetryCount         *int    `json:"retry_count"`
	FailedStage        *string `json:"failed_stage"`
	LastErrorCode      *string `json:"last_error_code"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// VideoJobDetail is the single-job payload.
type VideoJobDetail struct {
	VideoJob
	RawSelfieURL       *string `json:"raw_selfie_url"`
	NormalizedImageURL *string `json:"normalized_image_url"`
	LipsyncSeg2URL     *string `json:"lipsync_seg2_url"`
	LipsyncSeg4URL     *string `json:"lipsync_seg4_url"`
	FinalVideoURL      *string `json:"final_video_url"`
	TermsAccepted      *bool   `json:"terms_accepted"`
	VideoCount         *int    `json:"video_count"`
	LockedBy           *string `json:"locked_by"`
	LockedAt           *string `json:"locked_at"`
}

// JobListResponse wraps one page of listing results.
type JobListResponse struct {
	Items      []VideoJob `json:"items"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
	Message    string     `json:"message,omitempty"`
}

// MessageResponse is the success envelope for mutations.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the backend's failure envelope.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ReportCounts holds the aggregate counts for a range.
type ReportCounts struct {
	Total              int            `json:"total"`
	TotalUsers         int            `json:"total_users"`
	ReturningUsers     int            `json:"returning_users"`
	Gender             map[string]int `json:"gender"`
	Status             map[string]int `json:"status"`
	RelationshipStatus map[string]int `json:"relationship_status"`
	AttributeLove      map[string]int `json:"attribute_love"`
	Vibe               map[string]int `json:"vibe"`
}

// StatsResponse is the reports/stats payload.
type StatsResponse struct {
	StartDate *string      `json:"start_date"`
	EndDate   *string      `json:"end_date"`
	Counts    ReportCounts `json:"counts"`
}

// TrendPoint is one bucket of the reports/trend series.
type TrendPoint struct {
	Label          string `json:"label"`
	TotalEntries   int    `json:"total_entries"`
	TotalUsers     int    `json:"total_users"`
	ReturningUsers int    `json:"returning_users"`
}

// TrendResponse is the reports/trend payload.
type TrendResponse struct {
	Mode string       `json:"mode"`
	Data []TrendPoint `json:"data"`
}

// SourceDetail is per-source funnel data in the traffic payload.
type SourceDetail struct {
	Source         string  `json:"source"`
	Total          int     `json:"total"`
	Sent           int     `json:"sent"`
	Failed         int     `json:"failed"`
	InProgress     *int    `json:"in_progress"`
	ConversionRate float64 `json:"conversion_rate"`
}

// TrafficSourcesResponse is the reports/traffic-sources payload.
type TrafficSourcesResponse struct {
	StartDate     *string        `json:"start_date"`
	EndDate       *string        `json:"end_date"`
	UTMSource     map[string]int `json:"utm_source"`
	UTMMedium     map[string]int `json:"utm_medium"`
	UTMCampaign   map[string]int `json:"utm_campaign"`
	SourceDetails []SourceDetail `json:"source_details"`
}
