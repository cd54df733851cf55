package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"jobdesk/internal/jobs"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type jobJSON struct {
	ID                 int64     `json:"id"`
	UserID             string    `json:"user_id"`
	MobileNumber       *string   `json:"mobile_number"`
	Gender             *string   `json:"gender"`
	AttributeLove      *string   `json:"attribute_love"`
	RelationshipStatus *string   `json:"relationship_status"`
	Vibe               *string   `json:"vibe"`
	Status             *string   `json:"status"`
	RetryCount         int       `json:"retry_count"`
	FailedStage        *string   `json:"failed_stage"`
	LastErrorCode      *string   `json:"last_error_code"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type jobDetailJSON struct {
	jobJSON
	RawSelfieURL       *string    `json:"raw_selfie_url"`
	NormalizedImageURL *string    `json:"normalized_image_url"`
	LipsyncSeg2URL     *string    `json:"lipsync_seg2_url"`
	LipsyncSeg4URL     *string    `json:"lipsync_seg4_url"`
	FinalVideoURL      *string    `json:"final_video_url"`
	TermsAccepted      *bool      `json:"terms_accepted"`
	VideoCount         *int       `json:"video_count"`
	LockedBy           *string    `json:"locked_by"`
	LockedAt           *time.Time `json:"locked_at"`
	CanSendVideo       bool       `json:"can_send_video"`
}

type jobListJSON struct {
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
	Message    string    `json:"message,omitempty"`
	Items      []jobJSON `json:"items"`
}

func toJobJSON(j jobs.Job) jobJSON {
	return jobJSON{
		ID:                 j.ID,
		UserID:             j.UserID,
		MobileNumber:       j.MobileNumber,
		Gender:             j.Gender,
		AttributeLove:      j.AttributeLove,
		RelationshipStatus: j.RelationshipStatus,
		Vibe:               j.Vibe,
		Status:             optional(string(j.Status)),
		RetryCount:         j.Retries(),
		FailedStage:        optional(string(j.FailedStage)),
		LastErrorCode:      j.LastErrorCode,
		CreatedAt:          j.CreatedAt,
		UpdatedAt:          j.UpdatedAt,
	}
}

func toJobDetailJSON(d jobs.Detail) jobDetailJSON {
	return jobDetailJSON{
		jobJSON:            toJobJSON(d.Job),
		RawSelfieURL:       d.RawSelfieURL,
		NormalizedImageURL: d.NormalizedImageURL,
		LipsyncSeg2URL:     d.LipsyncSeg2URL,
		LipsyncSeg4URL:     d.LipsyncSeg4URL,
		FinalVideoURL:      d.FinalVideoURL,
		TermsAccepted:      d.TermsAccepted,
		VideoCount:         d.VideoCount,
		LockedBy:           d.LockedBy,
		LockedAt:           d.LockedAt,
		CanSendVideo:       d.CanSendVideo(),
	}
}

func toJobListJSON(state jobs.ListState) jobListJSON {
	out := jobListJSON{
		Page:       state.Query.Page,
		PageSize:   state.Query.PageSize,
		Total:      state.Total,
		TotalPages: state.TotalPages,
		Message:    state.Message,
		Items:      make([]jobJSON, 0, len(state.Items)),
	}
	for _, j := range state.Items {
		out.Items = append(out.Items, toJobJSON(j))
	}
	return out
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
